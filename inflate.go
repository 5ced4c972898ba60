package limelight

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// XMLProvider is a [TreeProvider] that inflates XML layout documents.
// Element names become [ViewInfo.Tag], XML attributes become view
// attributes, and nesting becomes the child hierarchy:
//
//	<column background="#202020">
//		<box height="40" background="#ff8800"/>
//		<box height="24"/>
//	</column>
//
// Each Inflate call re-parses the source and assigns fresh node IDs, so
// one document can be inflated into any number of independent subtrees.
type XMLProvider struct{}

// NewXMLProvider creates the XML tree provider.
func NewXMLProvider() *XMLProvider {
	return &XMLProvider{}
}

// Inflate parses src into a view subtree. The document must have exactly
// one root element; character data is ignored.
func (p *XMLProvider) Inflate(src []byte) (*ViewInfo, error) {
	dec := xml.NewDecoder(bytes.NewReader(src))

	var root *ViewInfo
	var stack []*ViewInfo
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("inflate xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			node := NewView(t.Name.Local)
			for _, attr := range t.Attr {
				node.SetAttr(attr.Name.Local, attr.Value)
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("inflate xml: multiple root elements")
				}
				root = node
			} else {
				stack[len(stack)-1].AddChild(node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}
	if root == nil {
		return nil, fmt.Errorf("inflate xml: no root element")
	}
	return root, nil
}

package limelight

// Tree mutation operations. Each resolves its node handles by ID against
// the current tree, edits under the render lock, and (for insert and move)
// immediately re-renders so the caller observes the post-mutation raster.

// SetProperty stages an attribute change on the given node. The change is
// not visible until the next Render. Reports StatusNotFound if the node is
// not part of the current tree.
func (s *Scene) SetProperty(node *ViewInfo, name, value string) Result {
	return s.exec("setProperty", s.timeout, func() Result {
		s.mu.Lock()
		defer s.mu.Unlock()
		if node == nil || findByID(s.root, node.ID) == nil {
			return failf(StatusNotFound, "setProperty: node not in tree")
		}
		s.staged = append(s.staged, PropertyChange{NodeID: node.ID, Name: name, Value: value})
		return success
	})
}

// InsertChild inflates src, inserts the new subtree into parent at index,
// and renders. index -1 appends; otherwise index must be within
// [0, parent.NumChildren()]. On success Result.Data holds a copy of the
// inserted subtree as of the post-insert render (bounds filled), usable as
// a handle in later operations.
func (s *Scene) InsertChild(parent *ViewInfo, src []byte, index int) Result {
	return s.exec("insertChild", s.timeout, func() Result {
		return s.insertLocked(parent, src, index)
	})
}

// InsertChildAsync is InsertChild running on its own goroutine. The final
// Result (including the inflated child handle) arrives via listener.Done.
func (s *Scene) InsertChildAsync(parent *ViewInfo, src []byte, index int, listener AnimationListener) Result {
	return s.execAsync("insertChild", listener, func() Result {
		return s.insertLocked(parent, src, index)
	})
}

// insertLocked inflates and inserts, then renders. Caller holds the render
// lock.
func (s *Scene) insertLocked(parent *ViewInfo, src []byte, index int) Result {
	if s.bridge.trees == nil {
		return failf(StatusNotImplemented, "insertChild: no tree provider configured")
	}

	s.mu.Lock()
	target := (*ViewInfo)(nil)
	if parent != nil {
		target = findByID(s.root, parent.ID)
	}
	s.mu.Unlock()
	if target == nil {
		return failf(StatusNotFound, "insertChild: parent not in tree")
	}

	child, err := s.bridge.trees.Inflate(src)
	if err != nil {
		return failf(StatusErrorUnknown, "insertChild: inflate: %v", err)
	}

	s.mu.Lock()
	n := target.NumChildren()
	if index < -1 || index > n {
		s.mu.Unlock()
		return failf(StatusErrorUnknown, "insertChild: index %d out of range [-1, %d]", index, n)
	}
	if index == -1 {
		target.AddChild(child)
	} else {
		target.insertChildAt(child, index)
	}
	s.mu.Unlock()

	if res := s.renderLocked(); !res.Ok() {
		return res
	}
	// Hand back the post-render copy so the payload already carries the
	// laid-out bounds.
	s.mu.Lock()
	out := findByID(s.rendered, child.ID).Clone()
	s.mu.Unlock()
	return Result{Status: StatusSuccess, Data: out}
}

// MoveChild detaches child from its current parent, inserts it into parent
// at index, and renders. index is interpreted against the tree state after
// the removal: when moving within the same parent to a later slot, the
// caller must pass the index as counted with the child already gone.
// index -1 appends. Reports StatusNotFound if either node is unknown or if
// child is the scene root.
func (s *Scene) MoveChild(parent, child *ViewInfo, index int) Result {
	return s.exec("moveChild", s.timeout, func() Result {
		return s.moveLocked(parent, child, index)
	})
}

// MoveChildAsync is MoveChild running on its own goroutine, reporting
// through listener.Done.
func (s *Scene) MoveChildAsync(parent, child *ViewInfo, index int, listener AnimationListener) Result {
	return s.execAsync("moveChild", listener, func() Result {
		return s.moveLocked(parent, child, index)
	})
}

// moveLocked detaches, reattaches, and renders. Caller holds the render
// lock.
func (s *Scene) moveLocked(parent, child *ViewInfo, index int) Result {
	if parent == nil || child == nil {
		return failf(StatusNotFound, "moveChild: nil node handle")
	}

	s.mu.Lock()
	newParent := findByID(s.root, parent.ID)
	target := findByID(s.root, child.ID)
	if newParent == nil || target == nil {
		s.mu.Unlock()
		return failf(StatusNotFound, "moveChild: node not in tree")
	}
	oldParent := findParentOf(s.root, child.ID)
	if oldParent == nil {
		s.mu.Unlock()
		return failf(StatusNotFound, "moveChild: cannot move the root view")
	}
	if findByID(target, newParent.ID) != nil {
		// Reattaching a node under its own subtree would orphan the tree.
		s.mu.Unlock()
		return failf(StatusErrorUnknown, "moveChild: new parent is inside the moved subtree")
	}
	// Validate index against the post-removal child count before touching
	// the tree, so a bad index leaves it unchanged.
	n := newParent.NumChildren()
	if newParent == oldParent {
		n--
	}
	if index < -1 || index > n {
		s.mu.Unlock()
		return failf(StatusErrorUnknown, "moveChild: index %d out of range [-1, %d]", index, n)
	}
	oldParent.removeChild(target)
	if index == -1 {
		newParent.AddChild(target)
	} else {
		newParent.insertChildAt(target, index)
	}
	s.mu.Unlock()

	return s.renderLocked()
}

// RemoveChild detaches child from its parent. Like SetProperty this edits
// the tree only; call Render to observe the effect. Reports StatusNotFound
// if child is unknown or is the scene root.
func (s *Scene) RemoveChild(child *ViewInfo) Result {
	return s.exec("removeChild", s.timeout, func() Result {
		return s.removeLocked(child)
	})
}

// RemoveChildAsync is RemoveChild running on its own goroutine, reporting
// through listener.Done.
func (s *Scene) RemoveChildAsync(child *ViewInfo, listener AnimationListener) Result {
	return s.execAsync("removeChild", listener, func() Result {
		return s.removeLocked(child)
	})
}

// removeLocked detaches without rendering. Caller holds the render lock.
func (s *Scene) removeLocked(child *ViewInfo) Result {
	if child == nil {
		return failf(StatusNotFound, "removeChild: nil node handle")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	parent := findParentOf(s.root, child.ID)
	if parent == nil {
		return failf(StatusNotFound, "removeChild: node not in tree or is the root")
	}
	parent.removeChild(findByID(parent, child.ID))
	return success
}

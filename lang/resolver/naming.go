package resolver

func (r *resolver) nameBlocks() {
	// r.root was recorded when the chunk's top-level block was pushed, so
	// unlike r.env (nil again by the time ResolveFiles calls this, since the
	// matching pop already ran) it still points at the block to name.
	if r.root == nil {
		return
	}

	// walk the blocks tree, assigning a name to each. the root is '_', then 'a',
	// 'b', 'c', etc. with children appending their corresponding letter.
	nameBlock(r.root)
}

func nameBlock(b *block) {
	if b.parent == nil {
		b.name = "_"
		for _, bdg := range b.bindings {
			bdg.BlockName = b.name
		}
	}

	for i, cb := range b.children {
		cb.name = b.name + letterFor(i)
		for _, bdg := range cb.bindings {
			if bdg.BlockName == "" {
				bdg.BlockName = cb.name
			}
		}
		nameBlock(cb)
	}
}

func letterFor(i int) string {
	if i < 26 {
		return string(rune(i) + 'a')
	}
	if i < 52 {
		return string(rune(i-26) + 'A')
	}
	// too many child blocks, give up naming it
	return "?"
}

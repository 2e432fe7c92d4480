package legacygfx

// resourceTable maps atlas ids to device handles. Slots below stock are atlas
// pages, populated once and never reassigned; slots from stock on are
// surfaces, and a zero texture marks a free slot.
type resourceTable struct {
	textures     []Texture
	framebuffers []Framebuffer
	sizes        [][2]int
	stock        int
}

func (t *resourceTable) len() int { return len(t.textures) }

func (t *resourceTable) empty() bool { return len(t.textures) == 0 }

// lookup returns the slot at id. ok is false for out-of-range ids and free
// slots.
func (t *resourceTable) lookup(id int) (tex Texture, fb Framebuffer, w, h int, ok bool) {
	if id < 0 || id >= len(t.textures) || t.textures[id] == 0 {
		return 0, 0, 0, 0, false
	}
	return t.textures[id], t.framebuffers[id], t.sizes[id][0], t.sizes[id][1], true
}

// append installs a slot at the end of the table and returns its id.
func (t *resourceTable) append(tex Texture, fb Framebuffer, w, h int) int {
	t.textures = append(t.textures, tex)
	t.framebuffers = append(t.framebuffers, fb)
	t.sizes = append(t.sizes, [2]int{w, h})
	return len(t.textures) - 1
}

// install fills the lowest free surface slot, appending when there is none.
func (t *resourceTable) install(tex Texture, fb Framebuffer, w, h int) int {
	for i := t.stock; i < len(t.textures); i++ {
		if t.textures[i] == 0 {
			t.textures[i] = tex
			t.framebuffers[i] = fb
			t.sizes[i] = [2]int{w, h}
			return i
		}
	}
	return t.append(tex, fb, w, h)
}

// free tombstones a surface slot. Stock slots are left untouched.
func (t *resourceTable) free(id int) bool {
	if id < t.stock || id >= len(t.textures) || t.textures[id] == 0 {
		return false
	}
	t.textures[id] = 0
	t.framebuffers[id] = 0
	t.sizes[id] = [2]int{}
	return true
}

// truncate drops every slot at or beyond n. Callers release the handles.
func (t *resourceTable) truncate(n int) {
	t.textures = t.textures[:n]
	t.framebuffers = t.framebuffers[:n]
	t.sizes = t.sizes[:n]
}

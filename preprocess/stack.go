package preprocess

// frame is one level of !if nesting. enabled is whether the enclosing
// level is active, active whether lines are currently processed and
// done whether some branch at this level has already been taken.
type frame struct {
	enabled bool
	active  bool
	done    bool
}

type stack []frame

func newStack() stack {
	return stack{{enabled: true, active: true}}
}

func (s stack) top() frame {
	return s[len(s)-1]
}

func (s stack) active() bool {
	return s.top().active
}

func (s stack) depth() int {
	return len(s)
}

func (s *stack) push(v bool) {
	parent := s.active()
	*s = append(*s, frame{enabled: parent, active: parent && v, done: v})
}

func (s stack) set(v bool) {
	f := &s[len(s)-1]
	if !f.enabled {
		return
	}
	if v && !f.done {
		f.active = true
		f.done = true
	} else {
		f.active = false
	}
}

func (s stack) flip() {
	f := &s[len(s)-1]
	if f.enabled {
		f.active = !(f.active || f.done)
	}
}

// pop reports false when only the root frame is left.
func (s *stack) pop() bool {
	if len(*s) <= 1 {
		return false
	}
	*s = (*s)[:len(*s)-1]
	return true
}

package scorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeFrame struct {
	parent Frame
	opener Frame
	api    Runtime
}

func (f *fakeFrame) Parent() Frame {
	return f.parent
}

func (f *fakeFrame) Opener() Frame {
	return f.opener
}

func (f *fakeFrame) API() Runtime {
	return f.api
}

func TestLocate_NilFrame(t *testing.T) {
	assert.Nil(t, Locate(nil))
}

func TestLocate_APIOnSelf(t *testing.T) {
	api := newFakeRuntime()
	frame := &fakeFrame{api: api}

	assert.Equal(t, Runtime(api), Locate(frame))
}

func TestLocate_APIOnAncestor(t *testing.T) {
	api := newFakeRuntime()
	top := &fakeFrame{api: api}
	mid := &fakeFrame{parent: top}
	leaf := &fakeFrame{parent: mid}

	assert.Equal(t, Runtime(api), Locate(leaf))
}

func TestLocate_NothingFound(t *testing.T) {
	top := &fakeFrame{}
	leaf := &fakeFrame{parent: top}

	assert.Nil(t, Locate(leaf))
}

func TestLocate_ParentWalkIsBounded(t *testing.T) {
	api := newFakeRuntime()

	build := func(depth int) Frame {
		head := &fakeFrame{api: api}
		var frame Frame = head
		for i := 0; i < depth; i++ {
			frame = &fakeFrame{parent: frame}
		}
		return frame
	}

	assert.Equal(t, Runtime(api), Locate(build(maxParentHops-1)))
	assert.Nil(t, Locate(build(maxParentHops)))
}

func TestLocate_SelfReferencingParentTerminates(t *testing.T) {
	frame := &fakeFrame{}
	frame.parent = frame

	assert.Nil(t, Locate(frame))
}

func TestLocate_FallsBackToOpener(t *testing.T) {
	api := newFakeRuntime()
	openerTop := &fakeFrame{api: api}
	opener := &fakeFrame{parent: openerTop}
	frame := &fakeFrame{opener: opener}

	assert.Equal(t, Runtime(api), Locate(frame))
}

func TestLocate_OpenerChainIsRecursive(t *testing.T) {
	api := newFakeRuntime()
	first := &fakeFrame{api: api}
	second := &fakeFrame{opener: first}
	third := &fakeFrame{opener: second}

	assert.Equal(t, Runtime(api), Locate(third))
}

func TestLocate_ParentChainWinsOverOpener(t *testing.T) {
	parentAPI := newFakeRuntime()
	openerAPI := newFakeRuntime()
	frame := &fakeFrame{
		parent: &fakeFrame{api: parentAPI},
		opener: &fakeFrame{api: openerAPI},
	}

	assert.Equal(t, Runtime(parentAPI), Locate(frame))
}

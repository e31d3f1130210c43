package panel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlorentedev/productai/internal/prompt"
)

func TestMachineHappyPath(t *testing.T) {
	var m Machine
	assert.Equal(t, Idle, m.Snapshot().State)

	gen, err := m.Start(prompt.FixWriting)
	require.NoError(t, err)
	for _, c := range []string{"Hel", "lo", " world"} {
		assert.True(t, m.Append(gen, c))
	}
	assert.True(t, m.Finish(gen, nil))

	snap := m.Snapshot()
	assert.Equal(t, ReviewReady, snap.State)
	assert.Equal(t, "Hello world", snap.Draft)
	assert.Equal(t, prompt.FixWriting, snap.Active)

	require.NoError(t, m.Edit("Hello, world!"))
	saveGen, text, err := m.BeginSave()
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", text)
	assert.Equal(t, Saving, m.Snapshot().State)

	assert.True(t, m.EndSave(saveGen, nil))
	snap = m.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Empty(t, snap.Draft)
	assert.NoError(t, snap.Err)
}

func TestMachineStartUnknownType(t *testing.T) {
	var m Machine
	_, err := m.Start(prompt.Type("translate"))
	assert.ErrorIs(t, err, prompt.ErrUnknownType)
	assert.Equal(t, Idle, m.Snapshot().State)
}

func TestMachineSupersededGenerationIgnored(t *testing.T) {
	var m Machine
	old, err := m.Start(prompt.MakeLonger)
	require.NoError(t, err)
	require.True(t, m.Append(old, "old text"))

	cur, err := m.Start(prompt.MakeShorter)
	require.NoError(t, err)
	assert.Empty(t, m.Snapshot().Draft, "new stream starts from an empty draft")

	assert.False(t, m.Append(old, "late"))
	assert.False(t, m.Finish(old, nil))
	require.True(t, m.Append(cur, "new"))

	snap := m.Snapshot()
	assert.Equal(t, Streaming, snap.State)
	assert.Equal(t, prompt.MakeShorter, snap.Active)
	assert.Equal(t, "new", snap.Draft)
}

func TestMachineStartFromReviewDiscardsDraft(t *testing.T) {
	var m Machine
	gen, _ := m.Start(prompt.FixWriting)
	m.Append(gen, "draft")
	m.Finish(gen, nil)

	_, err := m.Start(prompt.ImproveSEO)
	require.NoError(t, err)
	snap := m.Snapshot()
	assert.Equal(t, Streaming, snap.State)
	assert.Empty(t, snap.Draft)
}

func TestMachineFinishWithError(t *testing.T) {
	var m Machine
	gen, _ := m.Start(prompt.FixWriting)
	m.Append(gen, "partial")

	boom := errors.New("truncated")
	assert.True(t, m.Finish(gen, boom))

	snap := m.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Empty(t, snap.Draft, "partial text must not look like a finished draft")
	assert.ErrorIs(t, snap.Err, boom)
}

func TestMachineEmptyCompletion(t *testing.T) {
	var m Machine
	gen, _ := m.Start(prompt.FixWriting)
	assert.True(t, m.Finish(gen, nil))

	snap := m.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.ErrorIs(t, snap.Err, ErrEmptyCompletion)
}

func TestMachineSaveFailureKeepsDraft(t *testing.T) {
	var m Machine
	gen, _ := m.Start(prompt.FixWriting)
	m.Append(gen, "generated")
	m.Finish(gen, nil)
	require.NoError(t, m.Edit("edited"))

	saveGen, _, err := m.BeginSave()
	require.NoError(t, err)
	failure := errors.New("update failed")
	assert.True(t, m.EndSave(saveGen, failure))

	snap := m.Snapshot()
	assert.Equal(t, ReviewReady, snap.State)
	assert.Equal(t, "edited", snap.Draft)
	assert.ErrorIs(t, snap.Err, failure)
}

func TestMachineCancel(t *testing.T) {
	var m Machine
	gen, _ := m.Start(prompt.FixWriting)
	m.Append(gen, "draft")
	m.Finish(gen, nil)

	require.NoError(t, m.Cancel())
	snap := m.Snapshot()
	assert.Equal(t, Idle, snap.State)
	assert.Empty(t, snap.Draft)
}

func TestMachineInvalidTransitions(t *testing.T) {
	var m Machine

	assert.ErrorIs(t, m.Edit("x"), ErrInvalidTransition)
	assert.ErrorIs(t, m.Cancel(), ErrInvalidTransition)
	_, _, err := m.BeginSave()
	assert.ErrorIs(t, err, ErrInvalidTransition)

	gen, _ := m.Start(prompt.FixWriting)
	assert.ErrorIs(t, m.Edit("x"), ErrInvalidTransition, "no edits while streaming")
	_, _, err = m.BeginSave()
	assert.ErrorIs(t, err, ErrInvalidTransition, "no save while streaming")
	assert.False(t, m.EndSave(gen, nil))
}

func TestMachineEnabled(t *testing.T) {
	var m Machine
	for _, typ := range prompt.Types() {
		assert.True(t, m.Enabled(typ), "%s enabled while idle", typ)
	}

	gen, _ := m.Start(prompt.MakeLonger)
	for _, typ := range prompt.Types() {
		assert.Equal(t, typ == prompt.MakeLonger, m.Enabled(typ), "%s while streaming make_longer", typ)
	}

	m.Append(gen, "x")
	m.Finish(gen, nil)
	for _, typ := range prompt.Types() {
		assert.True(t, m.Enabled(typ), "%s enabled in review", typ)
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "streaming", Streaming.String())
	assert.Equal(t, "review", ReviewReady.String())
	assert.Equal(t, "saving", Saving.String())
	assert.Equal(t, "State(9)", State(9).String())
}

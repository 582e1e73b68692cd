package display

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMutationError(t *testing.T) {
	t.Parallel()

	cause := errors.New("HTTP 429")
	err := fmt.Errorf("rename: %w", &MutationError{Kind: KindRateLimited, SurfaceID: "c1", Err: cause})

	assert.ErrorIs(t, err, ErrRateLimited)
	assert.NotErrorIs(t, err, ErrPermissionDenied)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "surface c1")
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"rate limited mutation", &MutationError{Kind: KindRateLimited}, KindRateLimited},
		{"permission mutation", &MutationError{Kind: KindPermissionDenied}, KindPermissionDenied},
		{"unknown mutation", &MutationError{Kind: KindUnknown, Err: errors.New("x")}, KindUnknown},
		{"bare sentinel", fmt.Errorf("wrapped: %w", ErrPermissionDenied), KindPermissionDenied},
		{"plain error", errors.New("boom"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestKind_Suppressed(t *testing.T) {
	t.Parallel()

	assert.True(t, KindRateLimited.Suppressed())
	assert.True(t, KindPermissionDenied.Suppressed())
	assert.False(t, KindUnknown.Suppressed())
}

func TestSnapshot_Lookup(t *testing.T) {
	t.Parallel()

	snap := Snapshot{"c1": {ID: "c1", Name: "Status: Online"}}

	surface, ok := snap.Lookup("c1")
	assert.True(t, ok)
	assert.Equal(t, "Status: Online", surface.Name)

	_, ok = snap.Lookup("missing")
	assert.False(t, ok)

	_, ok = snap.Lookup("")
	assert.False(t, ok)
}

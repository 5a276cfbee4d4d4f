package challenge

import (
	"testing"

	"flagdojo_backend/internal/util"

	"github.com/stretchr/testify/assert"
)

func TestDescriptorNormalized(t *testing.T) {
	t.Parallel()

	d := Descriptor{Slug: "demo", Title: "Demo", Flag: "FLAG{x}"}
	n := d.Normalized()

	assert.Equal(t, DefaultDifficulty, n.Difficulty)
	assert.Equal(t, DefaultPoints, n.Points)
	assert.Equal(t, DefaultDescription, n.Description)

	// 已声明的字段不被覆盖
	d = Descriptor{Slug: "demo", Title: "Demo", Flag: "FLAG{x}", Difficulty: "hard", Points: 300, Description: "d"}
	n = d.Normalized()
	assert.Equal(t, "hard", n.Difficulty)
	assert.Equal(t, 300, n.Points)
	assert.Equal(t, "d", n.Description)
}

func TestBaseChallengeValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		meta    Descriptor
		wantErr bool
	}{
		{
			name:    "complete descriptor",
			meta:    Descriptor{Slug: "demo", Title: "Demo", Flag: "FLAG{x}"},
			wantErr: false,
		},
		{
			name:    "missing slug",
			meta:    Descriptor{Title: "Demo", Flag: "FLAG{x}"},
			wantErr: true,
		},
		{
			name:    "missing title",
			meta:    Descriptor{Slug: "demo", Flag: "FLAG{x}"},
			wantErr: true,
		},
		{
			name:    "missing flag",
			meta:    Descriptor{Slug: "demo", Title: "Demo"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := NewBase(tt.meta, "")
			err := b.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, util.ErrContractViolation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBaseChallengeCheckFlag(t *testing.T) {
	t.Parallel()

	b := NewBase(Descriptor{Slug: "demo", Title: "Demo", Flag: "FLAG{correct}"}, "")

	assert.True(t, b.CheckFlag("FLAG{correct}"))
	assert.True(t, b.CheckFlag("  FLAG{correct}\n"), "首尾空白应被忽略")
	assert.False(t, b.CheckFlag("FLAG{CORRECT}"), "大小写敏感")
	assert.False(t, b.CheckFlag("FLAG{wrong}"))
	assert.False(t, b.CheckFlag(""))
}

func TestMountNamespace(t *testing.T) {
	t.Parallel()

	b := NewBase(Descriptor{Slug: "sqli-basic", Title: "t", Flag: "f"}, "")

	assert.Equal(t, "/challenge/sqli-basic", MountNamespace("sqli-basic"))
	assert.Equal(t, "/challenge/sqli-basic", b.MountPath())
}

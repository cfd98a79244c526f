package diffstat

import (
	"context"
	"errors"
	"testing"

	"github.com/seeyebe/gmap/internal/contract"
	"github.com/seeyebe/gmap/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	textV1 = []byte("a\nb\nc\n")
	textV2 = []byte("a\nx\nc\nd\n")
	png    = []byte{0x89, 'P', 'N', 'G', 0x00, 0x01}
)

func newStore(changes []schema.TreeChange) *contract.MockObjectStore {
	store := &contract.MockObjectStore{}
	store.On("DiffTrees", mock.Anything, "old", "new").Return(changes, nil)
	store.On("ReadBlob", mock.Anything, "v1").Return(textV1, nil)
	store.On("ReadBlob", mock.Anything, "v2").Return(textV2, nil)
	store.On("ReadBlob", mock.Anything, "png").Return(png, nil)
	return store
}

func TestComputeChangeKinds(t *testing.T) {
	tests := []struct {
		name          string
		change        schema.TreeChange
		includeBinary bool
		expected      []schema.FileStats
	}{
		{
			name:     "addition counts new lines",
			change:   schema.TreeChange{Kind: schema.Addition, NewBlobID: "v2", NewPath: "add.txt"},
			expected: []schema.FileStats{{Path: "add.txt", AddedLines: 4}},
		},
		{
			name:     "deletion counts old lines",
			change:   schema.TreeChange{Kind: schema.Deletion, OldBlobID: "v1", OldPath: "gone.txt"},
			expected: []schema.FileStats{{Path: "gone.txt", DeletedLines: 3}},
		},
		{
			name:     "modification runs the line diff",
			change:   schema.TreeChange{Kind: schema.Modification, OldBlobID: "v1", NewBlobID: "v2", OldPath: "m.txt", NewPath: "m.txt"},
			expected: []schema.FileStats{{Path: "m.txt", AddedLines: 2, DeletedLines: 1}},
		},
		{
			name:   "rename keeps deletions on the source",
			change: schema.TreeChange{Kind: schema.Rewrite, OldBlobID: "v1", NewBlobID: "v2", OldPath: "from.txt", NewPath: "to.txt"},
			expected: []schema.FileStats{
				{Path: "from.txt", DeletedLines: 1},
				{Path: "to.txt"},
			},
		},
		{
			name:   "copy keeps additions on the destination",
			change: schema.TreeChange{Kind: schema.Rewrite, OldBlobID: "v1", NewBlobID: "v2", OldPath: "from.txt", NewPath: "to.txt", Copy: true},
			expected: []schema.FileStats{
				{Path: "from.txt"},
				{Path: "to.txt", AddedLines: 2},
			},
		},
		{
			name:     "binary addition dropped by default",
			change:   schema.TreeChange{Kind: schema.Addition, NewBlobID: "png", NewPath: "logo.png"},
			expected: []schema.FileStats{},
		},
		{
			name:          "binary addition kept with zero counts",
			change:        schema.TreeChange{Kind: schema.Addition, NewBlobID: "png", NewPath: "logo.png"},
			includeBinary: true,
			expected:      []schema.FileStats{{Path: "logo.png", IsBinary: true}},
		},
		{
			name:          "binary deletion kept with zero counts",
			change:        schema.TreeChange{Kind: schema.Deletion, OldBlobID: "png", OldPath: "logo.png"},
			includeBinary: true,
			expected:      []schema.FileStats{{Path: "logo.png", IsBinary: true}},
		},
		{
			name:     "text to binary modification dropped by default",
			change:   schema.TreeChange{Kind: schema.Modification, OldBlobID: "v1", NewBlobID: "png", OldPath: "f", NewPath: "f"},
			expected: []schema.FileStats{},
		},
		{
			name:          "text to binary modification kept as binary",
			change:        schema.TreeChange{Kind: schema.Modification, OldBlobID: "v1", NewBlobID: "png", OldPath: "f", NewPath: "f"},
			includeBinary: true,
			expected:      []schema.FileStats{{Path: "f", IsBinary: true}},
		},
		{
			name:          "binary rename flags both sides",
			change:        schema.TreeChange{Kind: schema.Rewrite, OldBlobID: "png", NewBlobID: "png", OldPath: "a.png", NewPath: "b.png"},
			includeBinary: true,
			expected: []schema.FileStats{
				{Path: "a.png", IsBinary: true},
				{Path: "b.png", IsBinary: true},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewComputer(newStore([]schema.TreeChange{tt.change}))
			files, err := c.Compute(context.Background(), "old", "new", tt.includeBinary)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, files)
		})
	}
}

func TestComputeKeepsDiffOrder(t *testing.T) {
	changes := []schema.TreeChange{
		{Kind: schema.Modification, OldBlobID: "v1", NewBlobID: "v2", OldPath: "z.txt", NewPath: "z.txt"},
		{Kind: schema.Addition, NewBlobID: "v1", NewPath: "a.txt"},
		{Kind: schema.Deletion, OldBlobID: "v2", OldPath: "m.txt"},
	}
	files, err := NewComputer(newStore(changes)).Compute(context.Background(), "old", "new", false)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "z.txt", files[0].Path)
	assert.Equal(t, "a.txt", files[1].Path)
	assert.Equal(t, "m.txt", files[2].Path)
}

func TestComputeRootCommit(t *testing.T) {
	store := &contract.MockObjectStore{}
	store.On("DiffTrees", mock.Anything, "", "tree").Return([]schema.TreeChange{
		{Kind: schema.Addition, NewBlobID: "v1", NewPath: "README"},
	}, nil)
	store.On("ReadBlob", mock.Anything, "v1").Return(textV1, nil)

	files, err := NewComputer(store).Compute(context.Background(), "", "tree", false)
	require.NoError(t, err)
	assert.Equal(t, []schema.FileStats{{Path: "README", AddedLines: 3}}, files)
	store.AssertExpectations(t)
}

func TestComputeErrors(t *testing.T) {
	readErr := contract.NewError(contract.KindDecode, "read blob", errors.New("object not found"))

	t.Run("diff failure", func(t *testing.T) {
		store := &contract.MockObjectStore{}
		store.On("DiffTrees", mock.Anything, "old", "new").Return(nil, readErr)
		_, err := NewComputer(store).Compute(context.Background(), "old", "new", false)
		assert.ErrorIs(t, err, contract.ErrDecode)
	})

	t.Run("unreadable blob aborts the commit", func(t *testing.T) {
		store := &contract.MockObjectStore{}
		store.On("DiffTrees", mock.Anything, "old", "new").Return([]schema.TreeChange{
			{Kind: schema.Addition, NewBlobID: "v1", NewPath: "ok.txt"},
			{Kind: schema.Addition, NewBlobID: "missing", NewPath: "broken.txt"},
		}, nil)
		store.On("ReadBlob", mock.Anything, "v1").Return(textV1, nil)
		store.On("ReadBlob", mock.Anything, "missing").Return(nil, readErr)

		files, err := NewComputer(store).Compute(context.Background(), "old", "new", false)
		assert.ErrorIs(t, err, contract.ErrDecode)
		assert.Nil(t, files)
	})
}

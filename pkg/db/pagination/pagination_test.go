package pagination

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	token, err := EncodeCursor(Cursor{ID: "42", CreatedAt: "2026-03-01T09:00:00Z"})
	require.NoError(t, err)

	decoded, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "42", decoded.ID)
	assert.Equal(t, "2026-03-01T09:00:00Z", decoded.CreatedAt)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, err := DecodeCursor("not-base64!!")
	assert.Error(t, err)

	_, err = DecodeCursor("bm90LWpzb24=")
	assert.Error(t, err)
}

func TestBuildCursorPageInfo(t *testing.T) {
	type row struct{ id int }

	makeRows := func(n int) []*row {
		out := make([]*row, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, &row{id: i})
		}
		return out
	}
	cursor := func(r *row) string { return fmt.Sprintf("%d", r.id) }

	tests := []struct {
		name      string
		rows      []*row
		limit     int32
		wantMore  bool
		wantToken string
	}{
		{name: "empty", rows: nil, limit: 10, wantMore: false, wantToken: ""},
		{name: "under limit", rows: makeRows(3), limit: 10, wantMore: false, wantToken: "2"},
		{name: "exact limit", rows: makeRows(10), limit: 10, wantMore: false, wantToken: "9"},
		{name: "over limit trims extra row", rows: makeRows(11), limit: 10, wantMore: true, wantToken: "9"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info := BuildCursorPageInfo(tc.rows, tc.limit, cursor)
			assert.Equal(t, tc.wantMore, info.HasMore)
			assert.Equal(t, tc.wantToken, info.NextPageToken)
		})
	}
}

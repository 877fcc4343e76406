package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	chains := []string{"a", "b", "c", "d", "e", "f", "g"}

	tests := []struct {
		name     string
		opts     PageOptions
		want     []string
		wantPrev *int
		wantNext *int
		pages    int
	}{
		{"first page", PageOptions{PageNumber: 1, PageSize: 5}, []string{"a", "b", "c", "d", "e"}, nil, new(2), 2},
		{"last page", PageOptions{PageNumber: 2, PageSize: 5}, []string{"f", "g"}, new(1), nil, 2},
		{"defaults", PageOptions{}, chains, nil, nil, 1},
		{"out of range", PageOptions{PageNumber: 9, PageSize: 5}, nil, new(8), nil, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Paginate(chains, tt.opts)
			assert.Equal(t, tt.want, got.Items)
			assert.Equal(t, tt.wantPrev, got.PreviousPage)
			assert.Equal(t, tt.wantNext, got.NextPage)
			assert.Equal(t, tt.pages, got.TotalPages)
			assert.Equal(t, len(chains), got.TotalCount)
		})
	}
}

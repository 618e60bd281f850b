package posts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BorisDmv/posts-api/internal/models"
)

func strPtr(s string) *string { return &s }

func TestValidateCreate(t *testing.T) {
	tests := []struct {
		name    string
		req     PostRequest
		missing []string
	}{
		{
			name: "all present",
			req:  PostRequest{Title: strPtr("A"), Content: strPtr("B"), Author: strPtr("C")},
		},
		{
			name:    "empty request",
			req:     PostRequest{},
			missing: []string{"title", "content", "author"},
		},
		{
			name:    "blank title",
			req:     PostRequest{Title: strPtr("   "), Content: strPtr("B"), Author: strPtr("C")},
			missing: []string{"title"},
		},
		{
			name:    "empty content and missing author",
			req:     PostRequest{Title: strPtr("A"), Content: strPtr("")},
			missing: []string{"content", "author"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := ValidateCreate(tt.req)
			if tt.missing == nil {
				require.NoError(t, err)
				assert.Equal(t, models.PostInput{Title: "A", Content: "B", Author: "C"}, in)
				return
			}

			var verr *Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, KindMissingFields, verr.Kind)
			assert.Equal(t, tt.missing, verr.Fields)
			for _, field := range tt.missing {
				assert.Contains(t, verr.Message, field)
			}
		})
	}
}

func TestValidateCreate_KeepsValuesAsGiven(t *testing.T) {
	in, err := ValidateCreate(PostRequest{Title: strPtr(" A "), Content: strPtr("B"), Author: strPtr("C")})
	require.NoError(t, err)
	assert.Equal(t, " A ", in.Title)
}

func TestValidateUpdate_PassesThrough(t *testing.T) {
	empty := ValidateUpdate(PostRequest{})
	assert.True(t, empty.Empty())

	patch := ValidateUpdate(PostRequest{Content: strPtr("")})
	require.NotNil(t, patch.Content)
	assert.Equal(t, "", *patch.Content)
	assert.Nil(t, patch.Title)
	assert.Nil(t, patch.Author)
}

func TestValidateSearchQuery(t *testing.T) {
	q, err := ValidateSearchQuery("  golang ")
	require.NoError(t, err)
	assert.Equal(t, "golang", q)

	for _, raw := range []string{"", "   ", "\t\n"} {
		_, err := ValidateSearchQuery(raw)
		assert.Equal(t, KindMissingQuery, KindOf(err), "%q", raw)
	}
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("65f1c2d1a1b2c3d4e5f6a7b8"))

	for _, raw := range []string{"", "abc", "65f1c2d1a1b2c3d4e5f6a7b", "65f1c2d1a1b2c3d4e5f6a7bz", "65f1c2d1a1b2c3d4e5f6a7b8a"} {
		assert.Equal(t, KindInvalidID, KindOf(ValidateID(raw)), "%q", raw)
	}
}

func TestKindOf_UnclassifiedIsInternal(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(assert.AnError))
	assert.Equal(t, "internal", KindInternal.String())
	assert.Equal(t, "not_found", KindNotFound.String())
}

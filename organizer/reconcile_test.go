package organizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachFilesNameMatch(t *testing.T) {
	files := []FileDescriptor{{Name: "foo.txt"}, {Name: "bar.txt"}}
	resp := &AnalysisResponse{Suggestions: []Suggestion{
		{SuggestedPath: "x/bar.txt"},
		{SuggestedPath: "a/b/foo.txt"},
	}}

	AttachFiles(resp, files)

	require.NotNil(t, resp.Suggestions[0].File)
	assert.Equal(t, "bar.txt", resp.Suggestions[0].File.Name)
	require.NotNil(t, resp.Suggestions[1].File)
	assert.Equal(t, "foo.txt", resp.Suggestions[1].File.Name)
}

func TestAttachFilesIndexFallback(t *testing.T) {
	files := []FileDescriptor{{Name: "first.txt"}, {Name: "second.txt"}}
	resp := &AnalysisResponse{Suggestions: []Suggestion{
		{SuggestedPath: "x/unknown-a.txt"},
		{SuggestedPath: "x/unknown-b.txt"},
	}}

	AttachFiles(resp, files)

	assert.Equal(t, "first.txt", resp.Suggestions[0].File.Name)
	assert.Equal(t, "second.txt", resp.Suggestions[1].File.Name)
}

func TestAttachFilesFirstFileFallback(t *testing.T) {
	files := []FileDescriptor{{Name: "only.txt"}}
	resp := &AnalysisResponse{Suggestions: []Suggestion{
		{SuggestedPath: "x/unknown-a.txt"},
		{SuggestedPath: "x/unknown-b.txt"},
		{SuggestedPath: "x/unknown-c.txt"},
	}}

	AttachFiles(resp, files)

	for _, s := range resp.Suggestions {
		require.NotNil(t, s.File)
		assert.Equal(t, "only.txt", s.File.Name)
	}
}

func TestAttachFilesNoFiles(t *testing.T) {
	resp := &AnalysisResponse{Suggestions: []Suggestion{{SuggestedPath: "x/a.txt"}}}
	AttachFiles(resp, nil)
	assert.Nil(t, resp.Suggestions[0].File)
}

func TestAttachFilesBackslashPaths(t *testing.T) {
	files := []FileDescriptor{{Name: "notes.md"}}
	resp := &AnalysisResponse{Suggestions: []Suggestion{
		{SuggestedPath: `docs\personal\notes.md`},
	}}

	AttachFiles(resp, files)

	require.NotNil(t, resp.Suggestions[0].File)
	assert.Equal(t, "notes.md", resp.Suggestions[0].File.Name)
}

func TestAttachFilesNilResponse(t *testing.T) {
	assert.Nil(t, AttachFiles(nil, nil))
}

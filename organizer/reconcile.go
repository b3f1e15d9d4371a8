package organizer

import (
	"path"
	"strings"
)

// AttachFiles resolves each suggestion's File against the request's ordered
// descriptors. Resolution is three-tier: exact basename match on the
// suggested path, then the descriptor at the same index, then the first
// descriptor. Mis-attribution on reordered or truncated output is accepted;
// dropping a suggestion entirely would cost the user more. File stays nil
// only when the request carried no files.
func AttachFiles(resp *AnalysisResponse, files []FileDescriptor) *AnalysisResponse {
	if resp == nil {
		return nil
	}
	for i := range resp.Suggestions {
		resp.Suggestions[i].File = resolveFile(resp.Suggestions[i].SuggestedPath, files, i)
	}
	return resp
}

func resolveFile(suggestedPath string, files []FileDescriptor, index int) *FileDescriptor {
	base := path.Base(strings.ReplaceAll(suggestedPath, "\\", "/"))
	for i := range files {
		if files[i].Name == base {
			return &files[i]
		}
	}
	if index < len(files) {
		return &files[index]
	}
	if len(files) > 0 {
		return &files[0]
	}
	return nil
}

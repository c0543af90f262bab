package retrieval

// ContextNote is the generation-ready projection of a ranked note. It is
// owned by the response being built and never shared across requests.
// Selection and shaping happen here; prompt-level truncation is the
// generation collaborator's contract.
type ContextNote struct {
	Path                string   `json:"path"`
	Content             string   `json:"content"`
	Tags                []string `json:"tags"`
	MediaType           string   `json:"media_type,omitempty"`
	IsMediaNote         bool     `json:"is_media_note"`
	IsAudioNote         bool     `json:"is_audio_note"`
	Score               int      `json:"score"`
	CreatedTime         int64    `json:"createdTime,omitempty"`
	CreatedTimeReadable string   `json:"createdTimeReadable,omitempty"`
}

// assembleContext projects scored notes into context records, preferring the
// tag-stripped content and falling back to raw.
func assembleContext(scored []ScoredNote, maxResults int) []ContextNote {
	if len(scored) > maxResults {
		scored = scored[:maxResults]
	}
	out := make([]ContextNote, 0, len(scored))
	for _, sn := range scored {
		content := sn.Note.ContentWithoutTags
		if content == "" {
			content = sn.Note.RawContent
		}
		tags := sn.Note.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, ContextNote{
			Path:                sn.Note.Path,
			Content:             content,
			Tags:                tags,
			MediaType:           sn.Note.MediaType,
			IsMediaNote:         sn.Note.IsMediaNote,
			IsAudioNote:         sn.Note.IsAudioNote,
			Score:               sn.Score,
			CreatedTime:         sn.Note.CreatedTime,
			CreatedTimeReadable: sn.Note.CreatedTimeReadable,
		})
	}
	return out
}

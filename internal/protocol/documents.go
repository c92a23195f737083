package protocol

// DocumentData announces a document opened in the UI process.
type DocumentData struct {
	URI        DocumentURI `json:"uri"`
	LanguageID string      `json:"languageId"`
	Version    int         `json:"version"`
	Text       string      `json:"text"`
}

// ContentChange replaces Range with Text. A nil Range replaces the whole
// document.
type ContentChange struct {
	Range *Range `json:"range,omitempty"`
	Text  string `json:"text"`
}

// DocumentChange carries the edits that produced Version.
type DocumentChange struct {
	URI     DocumentURI     `json:"uri"`
	Version int             `json:"version"`
	Changes []ContentChange `json:"changes"`
}

// DocumentClose announces a closed document.
type DocumentClose struct {
	URI DocumentURI `json:"uri"`
}

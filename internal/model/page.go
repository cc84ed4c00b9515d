package model

// PageInput describes one non-checkbox <input> element. ID may be empty;
// script generation skips inputs it cannot address by id.
type PageInput struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type PageLink struct {
	Text string `json:"text"`
	Href string `json:"href"`
}

// PageStructure is the structural metadata extracted from an uploaded HTML
// page, consumed read-only by script generation. Every field defaults to
// empty rather than absent.
type PageStructure struct {
	IDs        []string    `json:"ids"`
	Classes    []string    `json:"classes"`
	Buttons    []string    `json:"buttons"`
	Inputs     []PageInput `json:"inputs"`
	Checkboxes []string    `json:"checkboxes"`
	Links      []PageLink  `json:"links"`
	FileName   string      `json:"file_name"`
}

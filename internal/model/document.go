package model

type Document struct {
	ID        string `json:"id"`
	UserID    string `json:"-"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	FileKey   string `json:"-"`
	FileName  string `json:"file_name,omitempty"`
	MimeType  string `json:"mime_type,omitempty"`
	Size      int64  `json:"size"`
	State     int    `json:"-"`
	Ctime     int64  `json:"ctime"`
	Mtime     int64  `json:"mtime"`
	OwnerName string `json:"-"`
}

func (d *Document) HasFile() bool {
	return d.FileKey != ""
}

package catalog

import "time"

// Document is an uploaded file's parsed text content plus listing metadata.
// Storage of the original binary lives outside this system; the catalog only
// ever sees extracted text.
type Document struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

type documentRow struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Name      string `db:"name"`
	Content   string `db:"content"`
	CreatedAt string `db:"created_at"`
}

type matrixRow struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Name      string `db:"name"`
	Questions string `db:"questions"`
	CreatedAt string `db:"created_at"`
}

type analysisRow struct {
	ID        string `db:"id"`
	MatrixID  string `db:"matrix_id"`
	FileID    string `db:"file_id"`
	UserID    string `db:"user_id"`
	Name      string `db:"name"`
	Responses string `db:"responses"`
	CreatedAt string `db:"created_at"`
}

package httpclient

import (
	"io"
	"maps"
	"mime/multipart"
	"net/textproto"
	"slices"
	"strings"
)

// MultipartBody is a multipart/form-data body carrying plain fields and one
// file. The file is copied from its reader while the request is sent, so
// large clips are never held in memory.
type MultipartBody struct {
	Fields map[string]string
	File   FilePart
}

// FilePart is the file section of a MultipartBody.
type FilePart struct {
	FieldName string
	FileName  string
	// ContentType defaults to application/octet-stream.
	ContentType string
	Reader      io.Reader
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// encode starts writing the body into a pipe and returns its read end with
// the matching Content-Type. A write failure surfaces on the reader.
func (m *MultipartBody) encode() (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	w := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(m.writeTo(w))
	}()
	return pr, w.FormDataContentType()
}

func (m *MultipartBody) writeTo(w *multipart.Writer) error {
	for _, k := range slices.Sorted(maps.Keys(m.Fields)) {
		if err := w.WriteField(k, m.Fields[k]); err != nil {
			return err
		}
	}

	if m.File.Reader != nil {
		contentType := m.File.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="`+quoteEscaper.Replace(m.File.FieldName)+
			`"; filename="`+quoteEscaper.Replace(m.File.FileName)+`"`)
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, m.File.Reader); err != nil {
			return err
		}
	}
	return w.Close()
}

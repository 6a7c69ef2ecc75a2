package critique

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/csheth/critic/internal/api"
	"github.com/csheth/critic/internal/perspective"
)

// Multipart field names understood by the analysis service.
const (
	FileField         = "file"
	AnswerLengthField = "answer_length"
)

type textPayload struct {
	Text         string `json:"text"`
	AnswerLength string `json:"answer_length"`
}

// Encode renders the active input slot as an analyze request. Readiness is
// the caller's job; an empty text is encoded verbatim.
func Encode(in InputState) (api.Request, error) {
	length := in.AnswerLength
	if length == "" {
		length = perspective.DefaultAnswerLength
	}
	if in.Mode == ModeFile {
		return encodeFile(in.File, length)
	}
	buf, err := json.Marshal(textPayload{Text: in.Text, AnswerLength: string(length)})
	if err != nil {
		return api.Request{}, err
	}
	return api.Request{Body: buf, ContentType: "application/json"}, nil
}

func encodeFile(file FileHandle, length perspective.AnswerLength) (api.Request, error) {
	if file == nil {
		return api.Request{}, fmt.Errorf("no file selected")
	}
	src, err := file.Open()
	if err != nil {
		return api.Request{}, fmt.Errorf("open %s: %w", file.Name(), err)
	}
	defer src.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FileField, escapeQuotes(file.Name())))
	header.Set("Content-Type", "application/pdf")
	part, err := writer.CreatePart(header)
	if err != nil {
		return api.Request{}, err
	}
	if _, err := io.Copy(part, src); err != nil {
		return api.Request{}, fmt.Errorf("read %s: %w", file.Name(), err)
	}
	if err := writer.WriteField(AnswerLengthField, string(length)); err != nil {
		return api.Request{}, err
	}
	if err := writer.Close(); err != nil {
		return api.Request{}, err
	}
	return api.Request{Body: body.Bytes(), ContentType: writer.FormDataContentType()}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

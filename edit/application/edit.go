package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/retouch-app/retouch/edit/domain"
	"github.com/retouch-app/retouch/internal/observability"
	"github.com/rs/zerolog/log"
)

// instructionTemplate is the fixed prompt wrapper sent to the image
// model. Only the user's description is interpolated.
const instructionTemplate = `Remove ONLY the described person. Inpaint the missing area naturally. ` +
	`Do not change any other person. Return one edited image.

Person to remove: %q.`

// EditResult is what one successful generation hands back: the edited
// bytes for immediate preview plus the token that later correlates
// checkout and download. The token travels out-of-band (a response
// header), never inside the body.
type EditResult struct {
	Token string
	Bytes []byte
	Mime  string
}

// EditService is the generation orchestrator. It makes exactly one
// model call per request and commits the result to the record store
// under a fresh token.
type EditService struct {
	editor domain.ImageEditor
	store  domain.RecordStore
}

func NewEditService(editor domain.ImageEditor, store domain.RecordStore) *EditService {
	return &EditService{
		editor: editor,
		store:  store,
	}
}

// Edit validates the upload, runs the model once, and persists the
// output. A storage failure after a successful generation is surfaced
// as domain.ErrStorage, distinct from generation failures, because the
// costly model call has already happened.
func (s *EditService) Edit(ctx context.Context, upload []byte, uploadMime, originalName, prompt string) (*EditResult, error) {
	prompt = strings.TrimSpace(prompt)
	if len(upload) == 0 || prompt == "" {
		return nil, fmt.Errorf("edit requires a file and a prompt: %w", domain.ErrInvalidInput)
	}

	if uploadMime == "" {
		uploadMime = domain.MimeJPEG
	}

	instruction := fmt.Sprintf(instructionTemplate, prompt)

	started := time.Now()
	edited, err := s.editor.EditImage(ctx, upload, uploadMime, instruction)
	observability.ObserveEditDuration(time.Since(started), err == nil)
	if err != nil {
		if errors.Is(err, domain.ErrNoImage) {
			log.Warn().Err(err).Msg("Model returned no image part")
			observability.CountEdit("no_image")
			return nil, err
		}
		observability.CountEdit("upstream_error")
		return nil, err
	}

	mime := domain.NormalizeMime(edited.Mime)
	token := domain.NewToken()

	handle, err := s.store.Put(ctx, token, edited.Bytes, mime, originalName)
	if err != nil {
		// The generation succeeded; losing it here is a server fault,
		// never a reason to ask the user to retry the model.
		log.Error().Err(err).Str("token", token).Msg("Failed to persist edited image")
		observability.CountEdit("storage_error")
		return nil, fmt.Errorf("persisting edited image: %v: %w", err, domain.ErrStorage)
	}

	log.Info().
		Str("token", token).
		Str("mime", mime).
		Str("imageKey", handle.ImageKey).
		Int("size", len(edited.Bytes)).
		Msg("Edited image stored")
	observability.CountEdit("ok")

	return &EditResult{
		Token: token,
		Bytes: edited.Bytes,
		Mime:  mime,
	}, nil
}

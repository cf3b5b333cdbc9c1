// Package archive lays out and writes the artifacts of processed
// conversations below an output root:
//
//	<root>/text/conversation_<ts>.md
//	<root>/text/conversation_<ts>.json
//	<root>/audio/qa_session_<ts>_part<N>.wav
//	<root>/metadata.schema.json
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/koscakluka/ema-jarvis/core/conversations"
	"github.com/xeipuuv/gojsonschema"
)

const (
	textDir    = "text"
	audioDir   = "audio"
	schemaFile = "metadata.schema.json"
)

var ErrInvalidMetadata = errors.New("conversation metadata does not match its schema")

type Store struct {
	root   string
	schema *gojsonschema.Schema
}

// New prepares the directory layout below root.
func New(root string) (*Store, error) {
	for _, dir := range []string{root, filepath.Join(root, textDir), filepath.Join(root, audioDir)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	schemaBytes, err := conversations.MetadataSchema()
	if err != nil {
		return nil, err
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to compile metadata schema: %w", err)
	}

	store := &Store{root: root, schema: schema}
	if err := store.writeSchema(schemaBytes); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) Root() string { return s.root }

// LogPath is where a run log with the given file name is kept.
func (s *Store) LogPath(name string) string { return filepath.Join(s.root, name) }

func (s *Store) TextFileName(timestamp string) string {
	return "conversation_" + timestamp + ".md"
}

func (s *Store) MetadataFileName(timestamp string) string {
	return "conversation_" + timestamp + ".json"
}

// AudioFileName names the part-th (1-based) audio chunk of a conversation.
func (s *Store) AudioFileName(timestamp string, part int) string {
	return fmt.Sprintf("qa_session_%s_part%d.wav", timestamp, part)
}

func (s *Store) TextPath(name string) string  { return filepath.Join(s.root, textDir, name) }
func (s *Store) AudioPath(name string) string { return filepath.Join(s.root, audioDir, name) }

// SaveText writes the Q&A text of the conversation and records its file name.
func (s *Store) SaveText(conversation *conversations.Conversation) (string, error) {
	name := s.TextFileName(conversation.Timestamp)
	if err := os.WriteFile(s.TextPath(name), []byte(conversation.Text()), 0o644); err != nil {
		return "", fmt.Errorf("error saving Q&A file: %w", err)
	}
	conversation.TextFile = name
	logger.Info("saved Q&A text", "file", name)
	return name, nil
}

// SaveMetadata validates the conversation against the metadata schema and
// writes it next to the text artifact.
func (s *Store) SaveMetadata(conversation *conversations.Conversation) (string, error) {
	data, err := json.MarshalIndent(conversation, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error marshalling metadata: %w", err)
	}

	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return "", fmt.Errorf("error validating metadata: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, resultErr := range result.Errors() {
			problems = append(problems, resultErr.String())
		}
		return "", fmt.Errorf("%w: %s", ErrInvalidMetadata, strings.Join(problems, ", "))
	}

	name := s.MetadataFileName(conversation.Timestamp)
	if err := os.WriteFile(s.TextPath(name), data, 0o644); err != nil {
		return "", fmt.Errorf("error saving metadata file: %w", err)
	}
	logger.Info("saved conversation metadata", "file", name)
	return name, nil
}

// LoadMetadata reads back a metadata file written by SaveMetadata.
func (s *Store) LoadMetadata(name string) (*conversations.Conversation, error) {
	data, err := os.ReadFile(s.TextPath(name))
	if err != nil {
		return nil, fmt.Errorf("error reading metadata file: %w", err)
	}
	var conversation conversations.Conversation
	if err := json.Unmarshal(data, &conversation); err != nil {
		return nil, fmt.Errorf("error unmarshalling metadata: %w", err)
	}
	return &conversation, nil
}

func (s *Store) writeSchema(schema []byte) error {
	path := filepath.Join(s.root, schemaFile)
	if existing, err := os.ReadFile(path); err == nil && string(existing) == string(schema) {
		return nil
	}
	if err := os.WriteFile(path, schema, 0o644); err != nil {
		return fmt.Errorf("error saving metadata schema: %w", err)
	}
	return nil
}

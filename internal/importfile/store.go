// Package importfile manages the staging directory holding uploaded import files.
package importfile

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/planner-shop/internal/apperr"
	"github.com/tuanvumaihuynh/planner-shop/internal/importer"
	"github.com/tuanvumaihuynh/planner-shop/internal/model"
	"github.com/tuanvumaihuynh/planner-shop/internal/storage/disk"
)

const jsonExt = ".json"

// DeleteAllResult is the outcome of clearing the staging directory.
// Deleted is zero and Message informational when there was nothing to delete.
type DeleteAllResult struct {
	Deleted int    `json:"deleted"`
	Message string `json:"message"`
}

// Store manages staged import files inside one directory of a disk.
type Store struct {
	logger *slog.Logger
	disk   disk.Disk
	dir    string
	now    func() time.Time
}

func NewStore(logger *slog.Logger, d disk.Disk, dir string) *Store {
	return &Store{
		logger: logger.With(slog.String("component", "import_file_store")),
		disk:   d,
		dir:    dir,
		now:    time.Now,
	}
}

// Stage writes r under a freshly generated name and returns that name.
func (s *Store) Stage(ctx context.Context, r io.Reader) (string, error) {
	if err := s.disk.MakeDirectory(ctx, s.dir); err != nil {
		return "", fmt.Errorf("make staging directory: %w", err)
	}

	name, err := s.newName()
	if err != nil {
		return "", fmt.Errorf("generate staged name: %w", err)
	}

	if err := s.disk.Put(ctx, path.Join(s.dir, name), r); err != nil {
		return "", fmt.Errorf("put staged file: %w", err)
	}

	s.logger.InfoContext(ctx, "import file staged", slog.String("filename", name))
	return name, nil
}

// List returns every .json file of the staging directory with its parsed
// content. Files that do not parse carry an error marker instead.
func (s *Store) List(ctx context.Context) ([]model.ImportFile, error) {
	if err := s.disk.MakeDirectory(ctx, s.dir); err != nil {
		return nil, fmt.Errorf("make staging directory: %w", err)
	}

	infos, err := s.disk.Files(ctx, s.dir)
	if err != nil {
		return nil, fmt.Errorf("list staging directory: %w", err)
	}

	files := make([]model.ImportFile, 0, len(infos))
	for _, info := range infos {
		if !strings.HasSuffix(info.Name, jsonExt) {
			continue
		}

		file := model.ImportFile{Filename: info.Name, Size: info.Size}

		data, err := s.disk.Get(ctx, path.Join(s.dir, info.Name))
		switch {
		case errors.Is(err, disk.ErrNotExist):
			// deleted concurrently
			continue
		case err != nil:
			file.Error = fmt.Sprintf("read error: %v", err)
		default:
			if _, perr := importer.ParseDocument(data); perr != nil {
				file.Error = fmt.Sprintf("read error: %v", perr)
				break
			}
			file.Content = json.RawMessage(data)
		}

		files = append(files, file)
	}

	return files, nil
}

// Delete removes one staged file. A missing file reports apperr.ImportFileNotFoundErr.
func (s *Store) Delete(ctx context.Context, filename string) error {
	if !validFilename(filename) {
		return apperr.ImportFileNotFoundErr
	}

	p := path.Join(s.dir, filename)
	exists, err := s.disk.Exists(ctx, p)
	if err != nil {
		return fmt.Errorf("check staged file: %w", err)
	}
	if !exists {
		return apperr.ImportFileNotFoundErr
	}

	if err := s.disk.Delete(ctx, p); err != nil {
		return fmt.Errorf("delete staged file: %w", err)
	}

	s.logger.InfoContext(ctx, "import file deleted", slog.String("filename", filename))
	return nil
}

// Remove deletes a staged file, ignoring files that are already gone.
func (s *Store) Remove(ctx context.Context, filename string) error {
	if err := s.Delete(ctx, filename); err != nil && !errors.Is(err, apperr.ImportFileNotFoundErr) {
		return err
	}
	return nil
}

// DeleteAll removes every regular file of the staging directory.
func (s *Store) DeleteAll(ctx context.Context) (DeleteAllResult, error) {
	exists, err := s.disk.DirectoryExists(ctx, s.dir)
	if err != nil {
		return DeleteAllResult{}, fmt.Errorf("check staging directory: %w", err)
	}
	if !exists {
		return DeleteAllResult{Message: "No files to delete."}, nil
	}

	infos, err := s.disk.Files(ctx, s.dir)
	if err != nil {
		return DeleteAllResult{}, fmt.Errorf("list staging directory: %w", err)
	}
	if len(infos) == 0 {
		return DeleteAllResult{Message: "No files to delete."}, nil
	}

	var res DeleteAllResult
	for _, info := range infos {
		if err := s.disk.Delete(ctx, path.Join(s.dir, info.Name)); err != nil {
			return res, fmt.Errorf("delete %s: %w", info.Name, err)
		}
		res.Deleted++
	}

	res.Message = "All files deleted successfully!"
	s.logger.InfoContext(ctx, "import files deleted", slog.Int("count", res.Deleted))
	return res, nil
}

func (s *Store) newName() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("import_%s_%s%s", hex.EncodeToString(id[:4]), s.now().UTC().Format("20060102_150405"), jsonExt), nil
}

// validFilename accepts plain names only so a request cannot leave the staging directory.
func validFilename(name string) bool {
	return name != "" &&
		name != "." &&
		name != ".." &&
		!strings.ContainsAny(name, `/\`) &&
		path.Base(name) == name
}

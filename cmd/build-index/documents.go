package main

import (
	"io/fs"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"clauselens-backend/extractor"
	"clauselens-backend/models"
	"clauselens-backend/service"
	"clauselens-backend/storage"
)

type referenceDocument struct {
	Source   string // path relative to the corpus root, slash separated
	Category string
	Text     string
}

// collectDocuments extracts every allowed file under root; unreadable files are logged and skipped
func collectDocuments(root string) ([]referenceDocument, error) {
	var docs []referenceDocument

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !storage.AllowedFile(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		text, err := extractor.ExtractFile(path)
		if err != nil {
			log.Printf("Warning: %v, skipping %s", err, rel)
			return nil
		}

		docs = append(docs, referenceDocument{
			Source:   rel,
			Category: categoryFor(rel),
			Text:     text,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Source < docs[j].Source })
	return docs, nil
}

// categoryFor uses the top level directory, or the file stem for top level files
func categoryFor(rel string) string {
	if idx := strings.Index(rel, "/"); idx > 0 {
		return humanize(rel[:idx])
	}
	base := filepath.Base(rel)
	return humanize(strings.TrimSuffix(base, filepath.Ext(base)))
}

func humanize(name string) string {
	return strings.Join(strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(name)), " ")
}

func (d referenceDocument) chunks(namespace string, maxChars int) []models.LegalChunk {
	parts := service.SplitIntoChunks(d.Text, maxChars)
	chunks := make([]models.LegalChunk, 0, len(parts))
	for i, text := range parts {
		chunks = append(chunks, models.LegalChunk{
			ID:             models.ChunkID(namespace, d.Source, i),
			Namespace:      namespace,
			Category:       d.Category,
			Text:           text,
			SourceDocument: d.Source,
			ChunkIndex:     i,
		})
	}
	return chunks
}

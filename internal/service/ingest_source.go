package service

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"mindcare-rag-be/internal/dto"
	"mindcare-rag-be/pkg/rag/router"
	"mindcare-rag-be/pkg/utils"
)

type ChunkStrategy string

const (
	ChunkRecursive    ChunkStrategy = "recursive"
	ChunkFullDocument ChunkStrategy = "full_document"
	ChunkQAPairs      ChunkStrategy = "qa_pairs"

	NIMHCollection       = router.CollectionNIMHArticles
	CounselingCollection = router.CollectionCounseling
)

type ChunkConfig struct {
	Size     int
	Overlap  int
	Strategy ChunkStrategy
}

var chunkConfigs = map[string]ChunkConfig{
	router.CollectionCBTBible:     {Size: 1500, Overlap: 200, Strategy: ChunkRecursive},
	router.CollectionMindOverMood: {Size: 800, Overlap: 100, Strategy: ChunkRecursive},
	router.CollectionDBTManual:    {Size: 500, Overlap: 50, Strategy: ChunkRecursive},
	router.CollectionACTSimple:    {Size: 1000, Overlap: 150, Strategy: ChunkRecursive},
	NIMHCollection:                {Size: 2000, Overlap: 200, Strategy: ChunkFullDocument},
	CounselingCollection:          {Strategy: ChunkQAPairs},
}

var defaultChunkConfig = ChunkConfig{Size: 1000, Overlap: 100, Strategy: ChunkRecursive}

// ChunkConfigFor returns the chunking rules of a collection, or 1000/100
// recursive splitting when it has none.
func ChunkConfigFor(collection string) ChunkConfig {
	if cfg, ok := chunkConfigs[collection]; ok {
		return cfg
	}
	return defaultChunkConfig
}

// BookCollections lists the collections fed from plain text books.
func BookCollections() []string {
	var names []string
	for name, cfg := range chunkConfigs {
		if cfg.Strategy == ChunkRecursive {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// LoadTextSources chunks every .txt file under dir/collection. A missing
// directory yields no documents.
func LoadTextSources(dir, collection string) ([]dto.IngestDocument, error) {
	files, err := filepath.Glob(filepath.Join(dir, collection, "*.txt"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	cfg := ChunkConfigFor(collection)
	var docs []dto.IngestDocument
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}

		title := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		for _, chunk := range utils.SplitText(string(content), cfg.Size, cfg.Overlap) {
			idx := len(docs)
			docs = append(docs, dto.IngestDocument{
				Id:   fmt.Sprintf("%s_%d", collection, idx),
				Text: chunk,
				Metadata: map[string]string{
					"source":    collection,
					"title":     title,
					"chunk_idx": strconv.Itoa(idx),
				},
			})
		}
	}
	return docs, nil
}

// NIMHMetadata is one entry of the article metadata file.
type NIMHMetadata struct {
	Filename string `json:"filename"`
	Title    string `json:"title"`
	Topic    string `json:"topic"`
	Tags     struct {
		Disorders []string `json:"disorders"`
	} `json:"tags"`
}

// LoadNIMHArticles stores each article whole, unless it runs past the
// collection's Size in tokens; such an article is cut into token windows.
// metadataPath is optional; a missing file falls back to file names as titles.
func LoadNIMHArticles(dir, metadataPath string) ([]dto.IngestDocument, error) {
	meta, err := loadNIMHMetadata(metadataPath)
	if err != nil {
		return nil, err
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	cfg := ChunkConfigFor(NIMHCollection)
	docs := make([]dto.IngestDocument, 0, len(files))
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}

		name := filepath.Base(file)
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		m := meta[name]
		title := m.Title
		if title == "" {
			title = stem
		}

		text := string(content)
		parts := []string{text}
		if utils.CountTokens(text) > cfg.Size {
			parts = utils.SplitTokens(text, cfg.Size, cfg.Overlap)
		}

		for i, part := range parts {
			doc := dto.IngestDocument{
				Id:   "nimh_" + stem,
				Text: part,
				Metadata: map[string]string{
					"source":    "nimh",
					"filename":  name,
					"title":     title,
					"topic":     m.Topic,
					"disorders": strings.Join(m.Tags.Disorders, ", "),
				},
			}
			if len(parts) > 1 {
				doc.Id = fmt.Sprintf("nimh_%s_%d", stem, i)
				doc.Metadata["chunk_idx"] = strconv.Itoa(i)
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func loadNIMHMetadata(path string) (map[string]NIMHMetadata, error) {
	out := map[string]NIMHMetadata{}
	if path == "" {
		return out, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var entries []NIMHMetadata
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	for _, e := range entries {
		out[e.Filename] = e
	}
	return out, nil
}

// LoadCounselingCSV turns each Context/Response row into one exchange. Rows
// missing either side are skipped.
func LoadCounselingCSV(path string) ([]dto.IngestDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCounselingCSV(f)
}

func ReadCounselingCSV(r io.Reader) ([]dto.IngestDocument, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	contextCol, responseCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case "Context":
			contextCol = i
		case "Response":
			responseCol = i
		}
	}
	if contextCol < 0 || responseCol < 0 {
		return nil, errors.New("csv must have Context and Response columns")
	}

	var docs []dto.IngestDocument
	for i := 0; ; i++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		var userText, reply string
		if contextCol < len(row) {
			userText = strings.TrimSpace(row[contextCol])
		}
		if responseCol < len(row) {
			reply = strings.TrimSpace(row[responseCol])
		}
		if userText == "" || reply == "" {
			continue
		}

		docs = append(docs, dto.IngestDocument{
			Id:   fmt.Sprintf("counseling_%d", i),
			Text: fmt.Sprintf("User: %s\n\nCounselor: %s", userText, reply),
			Metadata: map[string]string{
				"source": CounselingCollection,
				"idx":    strconv.Itoa(i),
			},
		})
	}
	return docs, nil
}

package dedup

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"
)

// Key is the identity of one posting as far as deduplication is concerned.
type Key struct {
	JobID   string
	Link    string
	Title   string
	Company string
}

// Normalize fills JobID and Link from the raw link, the same way for every caller.
func (k Key) Normalize() Key {
	if k.JobID == "" {
		k.JobID = ExtractID(k.Link)
	}
	k.Link = Canonicalize(k.Link)
	return k
}

// Identifiable is implemented by records that can be deduplicated.
type Identifiable interface {
	DedupKey() Key
}

// SeenStore is the durable set of previously reported postings.
// It only grows; Reset on the FileStore is the one way to shrink it.
type SeenStore struct {
	JobIDs           mapset.Set[string]
	Links            mapset.Set[string]
	TitleCompanyKeys mapset.Set[string]
	LastUpdated      time.Time
}

func NewSeenStore() *SeenStore {
	return &SeenStore{
		JobIDs:           mapset.NewSet[string](),
		Links:            mapset.NewSet[string](),
		TitleCompanyKeys: mapset.NewSet[string](),
	}
}

// IsSeen checks the id set, then the canonical link set, then the title|company set.
func (s *SeenStore) IsSeen(k Key) bool {
	k = k.Normalize()
	if k.JobID != "" && s.JobIDs.Contains(k.JobID) {
		return true
	}
	if k.Link != "" && s.Links.Contains(k.Link) {
		return true
	}
	if tc := TitleCompanyKey(k.Title, k.Company); tc != "" && s.TitleCompanyKeys.Contains(tc) {
		return true
	}
	return false
}

// Add records k in every set it has a value for.
func (s *SeenStore) Add(k Key) {
	k = k.Normalize()
	if k.JobID != "" {
		s.JobIDs.Add(k.JobID)
	}
	if k.Link != "" {
		s.Links.Add(k.Link)
	}
	if tc := TitleCompanyKey(k.Title, k.Company); tc != "" {
		s.TitleCompanyKeys.Add(tc)
	}
}

// TotalCount is informational only, as in the persisted file.
func (s *SeenStore) TotalCount() int {
	return s.JobIDs.Cardinality() + s.Links.Cardinality()
}

type Stats struct {
	JobIDs           int       `json:"jobIds"`
	Links            int       `json:"links"`
	TitleCompanyKeys int       `json:"titleCompanyKeys"`
	LastUpdated      time.Time `json:"lastUpdated"`
}

func (s *SeenStore) Stats() Stats {
	return Stats{
		JobIDs:           s.JobIDs.Cardinality(),
		Links:            s.Links.Cardinality(),
		TitleCompanyKeys: s.TitleCompanyKeys.Cardinality(),
		LastUpdated:      s.LastUpdated,
	}
}

// FilterNew keeps the items that carry a usable identity and are not in the store, in order.
func FilterNew[T Identifiable](items []T, store *SeenStore) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := item.DedupKey().Normalize()
		if k.JobID == "" && k.Link == "" {
			continue
		}
		if store.IsSeen(k) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Keys collects the dedup keys of items.
func Keys[T Identifiable](items []T) []Key {
	keys := make([]Key, len(items))
	for i, item := range items {
		keys[i] = item.DedupKey()
	}
	return keys
}

// storeFile is the exact on-disk layout.
type storeFile struct {
	JobIDs           []string `json:"jobIds"`
	Links            []string `json:"links"`
	TitleCompanyKeys []string `json:"titleCompanyKeys"`
	LastUpdated      string   `json:"lastUpdated"`
	TotalCount       int      `json:"totalCount"`
}

// FileStore persists a SeenStore as one JSON document, replaced atomically on save.
type FileStore struct {
	path string
	log  *zap.Logger
	now  func() time.Time
}

func NewFileStore(path string, log *zap.Logger) *FileStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileStore{
		path: path,
		log:  log.With(zap.String("component", "dedup")),
		now:  time.Now,
	}
}

func (fs *FileStore) Path() string {
	return fs.path
}

// Load reads the store from disk. A missing or unparsable file yields an empty store.
func (fs *FileStore) Load() *SeenStore {
	store := NewSeenStore()

	data, err := os.ReadFile(fs.path)
	if err != nil {
		if !os.IsNotExist(err) {
			fs.log.Warn("⚠️ failed to read seen jobs, starting empty", zap.String("path", fs.path), zap.Error(err))
		}
		return store
	}

	var file storeFile
	if err := json.Unmarshal(data, &file); err != nil {
		fs.log.Warn("⚠️ seen jobs file is corrupt, starting empty", zap.String("path", fs.path), zap.Error(err))
		return store
	}

	for _, id := range file.JobIDs {
		store.JobIDs.Add(id)
	}
	for _, link := range file.Links {
		store.Links.Add(link)
	}
	for _, key := range file.TitleCompanyKeys {
		store.TitleCompanyKeys.Add(key)
	}
	if t, err := time.Parse(time.RFC3339Nano, file.LastUpdated); err == nil {
		store.LastUpdated = t
	}

	fs.log.Info("📋 loaded previously seen jobs",
		zap.Int("job_ids", store.JobIDs.Cardinality()),
		zap.Int("links", store.Links.Cardinality()),
		zap.Int("title_company_keys", store.TitleCompanyKeys.Cardinality()))
	return store
}

// Save rewrites the whole file through a temp file and rename, so a crash
// mid-write leaves the previous version in place.
func (fs *FileStore) Save(store *SeenStore) error {
	store.LastUpdated = fs.now().UTC()

	file := storeFile{
		JobIDs:           sorted(store.JobIDs),
		Links:            sorted(store.Links),
		TitleCompanyKeys: sorted(store.TitleCompanyKeys),
		LastUpdated:      store.LastUpdated.Format(time.RFC3339Nano),
		TotalCount:       store.TotalCount(),
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal seen jobs: %w", err)
	}

	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(fs.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp store file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp store file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp store file: %w", err)
	}
	if err := os.Rename(tmpName, fs.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}

	fs.log.Info("💾 saved seen jobs", zap.Int("total", file.TotalCount), zap.String("path", fs.path))
	return nil
}

// MarkSeen adds keys to store and persists it. Re-marking is a no-op apart
// from the lastUpdated timestamp.
func (fs *FileStore) MarkSeen(store *SeenStore, keys []Key) error {
	for _, k := range keys {
		store.Add(k)
	}
	return fs.Save(store)
}

// Reset deletes the persisted state.
func (fs *FileStore) Reset() error {
	if err := os.Remove(fs.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove seen jobs: %w", err)
	}
	fs.log.Info("🧹 seen jobs cleared", zap.String("path", fs.path))
	return nil
}

// Stats loads the store and reports its sizes.
func (fs *FileStore) Stats() Stats {
	return fs.Load().Stats()
}

func sorted(s mapset.Set[string]) []string {
	out := s.ToSlice()
	sort.Strings(out)
	return out
}

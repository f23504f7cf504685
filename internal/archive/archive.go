package archive

import (
	"context"
	"fmt"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"os"
	"path/filepath"
	"time"
)

// Keeper writes audit copies of published files and prunes old ones.
type Keeper struct {
	dir       string
	retention time.Duration
}

func New(dir string, retention time.Duration) *Keeper {
	return &Keeper{dir: dir, retention: retention}
}

// Store writes one timestamped copy. Failures are logged, never fatal.
func (k *Keeper) Store(name string, data []byte) {
	if err := os.MkdirAll(k.dir, 0o755); err != nil {
		log.Errorf("could not create archive directory %s: %v", k.dir, err)
		return
	}

	stamped := fmt.Sprintf("%s_%s", time.Now().Format("20060102_150405"), name)
	if err := os.WriteFile(filepath.Join(k.dir, stamped), data, 0o644); err != nil {
		log.Errorf("could not archive %s: %v", name, err)
		return
	}
	log.Debugf("📦 archived %s (%s)", stamped, humanize.Bytes(uint64(len(data))))
}

// StartJanitor prunes expired archive files on an interval until the context
// ends. The first pass runs right away.
func (k *Keeper) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if _, err := k.Prune(); err != nil {
				log.Errorf("archive prune failed: %v", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	log.Infof("🚀 Archive janitor started, pruning every %s", interval)
}

// Prune removes archive files older than the retention period and returns
// how many were removed.
func (k *Keeper) Prune() (int, error) {
	entries, err := os.ReadDir(k.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrapf(err, "could not read archive directory %s", k.dir)
	}

	cutoff := time.Now().Add(-k.retention)
	removed := 0
	var freed uint64

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(k.dir, entry.Name())); err != nil {
			log.Errorf("could not remove expired archive file %s: %v", entry.Name(), err)
			continue
		}
		removed++
		freed += uint64(info.Size())
	}

	if removed > 0 {
		log.Infof("🧹 pruned %d archived file(s), freed %s", removed, humanize.Bytes(freed))
	}
	return removed, nil
}

package thicket

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Capture queues a labeled snapshot to be written at the end of the next
// Resolve. The CBOR file lands in Config.CaptureDir with a timestamped name.
func (s *Scene) Capture(label string) {
	s.captures = append(s.captures, label)
}

// flushCaptures writes one snapshot file per queued label. Called at the end
// of Resolve.
func (s *Scene) flushCaptures() {
	if len(s.captures) == 0 {
		return
	}
	defer func() { s.captures = s.captures[:0] }()

	dir := s.cfg.CaptureDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Errorf("capture: mkdir %s: %v", dir, err)
		return
	}
	snap := s.Snapshot()
	data, err := MarshalSnapshot(&snap)
	if err != nil {
		log.Errorf("capture: %v", err)
		return
	}

	stamp := time.Now().Format("20060102_150405")
	for _, label := range s.captures {
		path := filepath.Join(dir, fmt.Sprintf("%s_f%d_%s.cbor", stamp, s.frame, sanitizeLabel(label)))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			log.Errorf("capture: %v", err)
		}
	}
}

// sanitizeLabel replaces characters that are unsafe in file names with
// underscores and falls back to "unlabeled" for empty strings.
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

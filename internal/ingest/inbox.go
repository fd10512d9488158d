package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kodjo-amani/dossier-check/constants"
)

// ScanInbox lists the dossier payloads already sitting in the inbox: *.json
// files at the root and subdirectories containing at least one *.txt file.
func ScanInbox(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("scan inbox %s: %w", root, err)
	}

	var payloads []string
	for _, e := range entries {
		full := filepath.Join(root, e.Name())
		if e.IsDir() {
			ok, err := hasTextFiles(full)
			if err != nil {
				return nil, err
			}
			if ok {
				payloads = append(payloads, full)
			}
			continue
		}
		if constants.NormalizeExt(filepath.Ext(e.Name())) == "json" {
			payloads = append(payloads, full)
		}
	}
	return payloads, nil
}

func hasTextFiles(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("scan dossier dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() && constants.NormalizeExt(filepath.Ext(e.Name())) == "txt" {
			return true, nil
		}
	}
	return false, nil
}

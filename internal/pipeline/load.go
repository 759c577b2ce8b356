package pipeline

import (
	"fmt"
	"log/slog"
	"os"

	"srmap/internal/mappings"
)

// MappingFiles names the mapping files of one build.
type MappingFiles struct {
	Primary          string
	CommunityClasses []string
	CommunityMembers []string
}

// LoadMappings reads the mapping files and builds a table. The primary
// file is optional so that ORIGINAL builds need no mappings at all.
func LoadMappings(files MappingFiles, logger *slog.Logger) (*mappings.Table, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tbl := mappings.New()

	if files.Primary != "" {
		lines, err := readLines(files.Primary)
		if err != nil {
			return nil, err
		}
		stats, err := tbl.LoadPrimary(lines)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded primary mappings", "file", files.Primary, "applied", stats.Applied, "ignored", stats.Ignored, "skipped", stats.Skipped)
	}

	if len(files.CommunityClasses) > 0 || len(files.CommunityMembers) > 0 {
		classLines, err := readAll(files.CommunityClasses)
		if err != nil {
			return nil, err
		}
		memberLines, err := readAll(files.CommunityMembers)
		if err != nil {
			return nil, err
		}
		stats, err := tbl.LoadCommunity(classLines, memberLines)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded community mappings", "files", len(files.CommunityClasses)+len(files.CommunityMembers), "applied", stats.Applied, "ignored", stats.Ignored, "skipped", stats.Skipped)
	}

	s := tbl.Stats()
	logger.Info("mappings loaded",
		"classes", s.PrimaryClasses, "methods", s.PrimaryMethods, "fields", s.PrimaryFields,
		"community_classes", s.CommunityClasses, "community_methods", s.CommunityMethods, "community_fields", s.CommunityFields)
	return tbl, nil
}

func readAll(paths []string) ([]string, error) {
	var all []string
	for _, p := range paths {
		lines, err := readLines(p)
		if err != nil {
			return nil, err
		}
		all = append(all, lines...)
	}
	return all, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mappings: %w", err)
	}
	defer f.Close()

	lines, err := mappings.ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lines, nil
}

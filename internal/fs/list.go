package fs

import (
	"context"
	"sort"
)

// ListedFile is a file found under a directory, with its path relative to that
// directory using "/" separators.
type ListedFile struct {
	Handle  FileHandle
	RelPath string
}

type listFrame struct {
	dir DirectoryHandle
	rel string
}

// ListAllFiles walks every file below root. It uses an explicit stack so deep
// trees do not grow the goroutine stack. A directory that cannot be listed is
// reported in the returned errors and its siblings are still visited.
// Results are sorted by RelPath.
func ListAllFiles(ctx context.Context, root DirectoryHandle, excludes *ExcludeList) ([]ListedFile, []ItemError) {
	var (
		files []ListedFile
		errs  []ItemError
	)

	stack := []listFrame{{dir: root}}
	for len(stack) > 0 {
		frame := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := ctx.Err(); err != nil {
			errs = append(errs, ItemError{Path: displayPath(frame.rel), Err: err})
			break
		}

		entries, err := frame.dir.Entries(ctx)
		if err != nil {
			errs = append(errs, ItemError{Path: displayPath(frame.rel), Err: err})
			continue
		}

		for _, entry := range entries {
			rel := JoinRel(frame.rel, entry.Name)
			if excludes.Match(rel, entry.Kind == KindDirectory) {
				continue
			}
			switch entry.Kind {
			case KindDirectory:
				stack = append(stack, listFrame{dir: entry.Dir, rel: rel})
			case KindFile:
				files = append(files, ListedFile{Handle: entry.File, RelPath: rel})
			}
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, errs
}

// JoinRel joins relative path components with "/", treating "" as the root.
func JoinRel(base, name string) string {
	if base == "" || base == "." {
		return name
	}
	if name == "" {
		return base
	}
	return base + "/" + name
}

func displayPath(rel string) string {
	if rel == "" {
		return "."
	}
	return rel
}

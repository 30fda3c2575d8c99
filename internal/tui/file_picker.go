package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/tormodhaugland/pf/internal/fs"
	"github.com/tormodhaugland/pf/internal/prompt"
)

// Guardrails to keep directory loading responsive.
var maxDirEntries = 500

// Styles for the file picker
var (
	pickerTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	pickerHelpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	pickerSelectedStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("236")).
				Foreground(lipgloss.Color("212")).
				Bold(true)
	pickerChosenStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("34")) // green
	pickerPartialStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	pickerDirStyle     = lipgloss.NewStyle().Bold(true)
	pickerErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// FilePickerResult holds the outcome of the file picker. Added carries the
// handles of newly chosen files; Removed lists paths that were unchecked.
type FilePickerResult struct {
	Added     []prompt.Pick
	Removed   []string
	Confirmed bool
	Aborted   bool
}

// fileNode represents a node in the filesystem tree.
type fileNode struct {
	Name          string // file/directory name
	RelPath       string // path relative to the picker root, "" for the root
	IsDir         bool
	IsExpanded    bool
	IsPlaceholder bool // synthetic row, e.g. a truncated listing
	Depth         int
	File          fs.FileHandle
	Dir           fs.DirectoryHandle
	State         prompt.TriState // directories only, recomputed on change
	LoadErr       error
	Children      []*fileNode
}

// filePickerModel is the Bubble Tea model for choosing the files of one slot.
type filePickerModel struct {
	ctx          context.Context
	slot         string
	excludes     *fs.ExcludeList
	root         *fileNode
	flatTree     []*fileNode
	selected     int
	work         *prompt.Store // staged choice for slot; records bound before opening have no Source
	initial      map[string]bool
	width        int
	height       int
	scrollOffset int
	message      string
	done         bool
	result       FilePickerResult

	// Path filter. While filtering, flatTree holds the ranked matches.
	filtering bool
	query     string
	allFiles  []prompt.Pick // listed on first use
}

// newFilePickerModel opens a picker rooted at dir. bound lists the paths
// already in the slot.
func newFilePickerModel(ctx context.Context, slot string, dir fs.DirectoryHandle, excludes *fs.ExcludeList, bound []string) filePickerModel {
	m := filePickerModel{
		ctx:      ctx,
		slot:     slot,
		excludes: excludes,
		work:     prompt.NewStore(),
		initial:  make(map[string]bool, len(bound)),
		width:    80,
		height:   24,
	}
	for _, p := range bound {
		m.work.AddFile(slot, prompt.FileRecord{Path: p})
		m.initial[p] = true
	}

	m.root = &fileNode{
		Name:       dir.Name(),
		IsDir:      true,
		IsExpanded: true,
		Dir:        dir,
	}
	m.loadChildren(m.root)
	m.refresh()
	return m
}

// loadChildren lists the immediate children of a directory node. Excluded
// entries are hidden and long listings are capped.
func (m *filePickerModel) loadChildren(node *fileNode) {
	if !node.IsDir || node.Children != nil {
		return
	}

	entries, err := node.Dir.Entries(m.ctx)
	if err != nil {
		node.LoadErr = err
		node.Children = []*fileNode{}
		return
	}

	node.Children = make([]*fileNode, 0, len(entries))
	added := 0
	for _, entry := range entries {
		rel := fs.JoinRel(node.RelPath, entry.Name)
		isDir := entry.Kind == fs.KindDirectory
		if m.excludes.Match(rel, isDir) {
			continue
		}

		if added >= maxDirEntries {
			node.Children = append(node.Children, &fileNode{
				Name:          "... more entries not shown",
				Depth:         node.Depth + 1,
				IsPlaceholder: true,
			})
			break
		}

		node.Children = append(node.Children, &fileNode{
			Name:    entry.Name,
			RelPath: rel,
			IsDir:   isDir,
			Depth:   node.Depth + 1,
			File:    entry.File,
			Dir:     entry.Dir,
		})
		added++
	}
}

// refresh rebuilds the visible rows and recomputes directory states.
func (m *filePickerModel) refresh() {
	if m.filtering {
		m.applyFilter()
		return
	}
	m.flatTree = m.flatTree[:0]
	if m.root == nil {
		return
	}
	stack := []*fileNode{m.root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		m.flatTree = append(m.flatTree, node)

		if node.IsDir {
			node.State = m.dirState(node)
		}
		if node.IsDir && node.IsExpanded {
			for i := len(node.Children) - 1; i >= 0; i-- {
				stack = append(stack, node.Children[i])
			}
		}
	}
	if m.selected >= len(m.flatTree) {
		m.selected = len(m.flatTree) - 1
	}
}

// applyFilter ranks every file under the root against the query, best match
// first. An empty query lists nothing.
func (m *filePickerModel) applyFilter() {
	if m.allFiles == nil {
		var errs []fs.ItemError
		m.allFiles, errs = prompt.ListPicks(m.ctx, m.root.Dir, m.root.RelPath, m.excludes)
		if len(errs) > 0 {
			m.message = fmt.Sprintf("%d directories could not be read", len(errs))
		}
	}

	m.flatTree = m.flatTree[:0]
	if m.query != "" {
		paths := make([]string, len(m.allFiles))
		for i, p := range m.allFiles {
			paths[i] = p.Path
		}
		ranks := fuzzy.RankFindFold(m.query, paths)
		sort.Sort(ranks)
		for _, r := range ranks {
			p := m.allFiles[r.OriginalIndex]
			m.flatTree = append(m.flatTree, &fileNode{Name: p.Path, RelPath: p.Path, File: p.Handle})
		}
	}
	if m.selected >= len(m.flatTree) {
		m.selected = len(m.flatTree) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m *filePickerModel) startFilter() {
	m.filtering = true
	m.query = ""
	m.selected = 0
	m.scrollOffset = 0
	m.refresh()
}

func (m *filePickerModel) stopFilter() {
	m.filtering = false
	m.query = ""
	m.selected = 0
	m.scrollOffset = 0
	m.refresh()
}

// updateFilter handles keys while the path filter is open. Typed runes edit
// the query; space still toggles the highlighted match.
func (m filePickerModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.result = FilePickerResult{Aborted: true}
		m.done = true
		return m, tea.Quit
	case tea.KeyEsc:
		m.stopFilter()
	case tea.KeyEnter:
		m.result = m.buildResult()
		m.done = true
		return m, tea.Quit
	case tea.KeyUp:
		if m.selected > 0 {
			m.selected--
			m.ensureVisible()
		}
	case tea.KeyDown:
		if m.selected < len(m.flatTree)-1 {
			m.selected++
			m.ensureVisible()
		}
	case tea.KeySpace:
		if m.selected < len(m.flatTree) {
			m.toggle(m.flatTree[m.selected])
		}
	case tea.KeyBackspace:
		if r := []rune(m.query); len(r) > 0 {
			m.query = string(r[:len(r)-1])
			m.selected = 0
			m.refresh()
		}
	case tea.KeyRunes:
		m.query += string(msg.Runes)
		m.selected = 0
		m.scrollOffset = 0
		m.refresh()
	}
	return m, nil
}

func (m *filePickerModel) dirState(node *fileNode) prompt.TriState {
	state, _ := prompt.FolderState(m.ctx, m.work, m.slot, node.Dir, node.RelPath, m.excludes)
	return state
}

func (m *filePickerModel) isChosen(rel string) bool {
	return m.work.HasPath(m.slot, rel)
}

// toggleExpand toggles the expanded state of a directory.
func (m *filePickerModel) toggleExpand(node *fileNode) {
	if !node.IsDir {
		return
	}
	node.IsExpanded = !node.IsExpanded
	if node.IsExpanded {
		m.loadChildren(node)
	}
	m.refresh()
}

// toggle flips a file, or bulk-flips a directory: a fully chosen directory is
// cleared, anything else is filled. Nothing is read until the picker closes.
func (m *filePickerModel) toggle(node *fileNode) {
	if node.IsPlaceholder {
		return
	}
	m.message = ""

	if !node.IsDir {
		if m.isChosen(node.RelPath) {
			m.work.RemovePath(m.slot, node.RelPath)
		} else {
			m.work.AddFile(m.slot, prompt.FileRecord{Path: node.RelPath, Source: node.File})
		}
		m.refresh()
		return
	}

	var res prompt.BulkResult
	if node.State == prompt.TriAll {
		res = prompt.RemoveDirectory(m.ctx, m.work, m.slot, node.Dir, node.RelPath, m.excludes)
	} else {
		res = prompt.MarkDirectory(m.ctx, m.work, m.slot, node.Dir, node.RelPath, m.excludes)
	}
	if len(res.Errors) > 0 {
		m.message = fmt.Sprintf("%d directories could not be read", len(res.Errors))
	}
	m.refresh()
}

// clearAll unchecks everything.
func (m *filePickerModel) clearAll() {
	m.work.ClearAll()
	m.refresh()
}

// buildResult diffs the chosen set against what was bound on open.
func (m *filePickerModel) buildResult() FilePickerResult {
	res := FilePickerResult{Confirmed: true}

	for _, r := range m.work.Files(m.slot) {
		if !m.initial[r.Path] && r.Source != nil {
			res.Added = append(res.Added, prompt.Pick{Handle: r.Source, Path: r.Path})
		}
	}
	sort.Slice(res.Added, func(i, j int) bool { return res.Added[i].Path < res.Added[j].Path })

	for p := range m.initial {
		if !m.isChosen(p) {
			res.Removed = append(res.Removed, p)
		}
	}
	sort.Strings(res.Removed)
	return res
}

// Init implements tea.Model.
func (m filePickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m filePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "/":
			m.startFilter()
			return m, nil

		case "ctrl+c", "esc", "q":
			m.result = FilePickerResult{Aborted: true}
			m.done = true
			return m, tea.Quit

		case "enter":
			m.result = m.buildResult()
			m.done = true
			return m, tea.Quit

		case "j", "down":
			if m.selected < len(m.flatTree)-1 {
				m.selected++
				m.ensureVisible()
			}
			return m, nil

		case "k", "up":
			if m.selected > 0 {
				m.selected--
				m.ensureVisible()
			}
			return m, nil

		case "g":
			m.selected = 0
			m.scrollOffset = 0
			return m, nil

		case "G":
			if len(m.flatTree) > 0 {
				m.selected = len(m.flatTree) - 1
				m.ensureVisible()
			}
			return m, nil

		case " ":
			if m.selected < len(m.flatTree) {
				m.toggle(m.flatTree[m.selected])
			}
			return m, nil

		case "l", "right":
			if m.selected < len(m.flatTree) {
				node := m.flatTree[m.selected]
				if node.IsDir && !node.IsExpanded {
					m.toggleExpand(node)
				}
			}
			return m, nil

		case "h", "left":
			if m.selected < len(m.flatTree) {
				node := m.flatTree[m.selected]
				if node.IsDir && node.IsExpanded && node != m.root {
					m.toggleExpand(node)
				}
			}
			return m, nil

		case "c":
			m.clearAll()
			return m, nil
		}
	}

	return m, nil
}

func (m *filePickerModel) visibleLines() int {
	lines := m.height - 8 // header and footer
	if lines < 5 {
		lines = 5
	}
	return lines
}

// ensureVisible ensures the selected item is visible in the viewport.
func (m *filePickerModel) ensureVisible() {
	visible := m.visibleLines()
	if m.selected < m.scrollOffset {
		m.scrollOffset = m.selected
	} else if m.selected >= m.scrollOffset+visible {
		m.scrollOffset = m.selected - visible + 1
	}
}

// View implements tea.Model.
func (m filePickerModel) View() string {
	var sb strings.Builder

	sb.WriteString(pickerTitleStyle.Render("Select files for "+m.slot) + "\n")
	sb.WriteString(pickerHelpStyle.Render(fmt.Sprintf("Root: %s", m.root.Name)) + "\n")
	if m.filtering {
		sb.WriteString("Filter: " + m.query + "█\n")
		if m.query != "" && len(m.flatTree) == 0 {
			sb.WriteString(pickerHelpStyle.Render("no matching files") + "\n")
		}
	}
	sb.WriteString("\n")

	visible := m.visibleLines()
	start := m.scrollOffset
	end := start + visible
	if end > len(m.flatTree) {
		end = len(m.flatTree)
	}
	for i := start; i < end; i++ {
		sb.WriteString(m.renderNode(m.flatTree[i], i == m.selected) + "\n")
	}

	if len(m.flatTree) > visible {
		sb.WriteString(fmt.Sprintf("\n(%d/%d)", m.selected+1, len(m.flatTree)))
	}

	sb.WriteString(fmt.Sprintf("\n\n%d files selected", len(m.work.Files(m.slot))))
	if m.message != "" {
		sb.WriteString("  " + pickerErrorStyle.Render(m.message))
	}

	if m.filtering {
		sb.WriteString("\n\n" + pickerHelpStyle.Render("type to filter • ↑/↓: navigate • space: toggle • esc: back to tree"))
		sb.WriteString("\n" + pickerHelpStyle.Render("enter: apply • ctrl+c: cancel"))
	} else {
		sb.WriteString("\n\n" + pickerHelpStyle.Render("j/k: navigate • space: toggle • h/l: collapse/expand • /: filter • c: clear"))
		sb.WriteString("\n" + pickerHelpStyle.Render("enter: apply • q: cancel"))
	}

	return sb.String()
}

func checkbox(state prompt.TriState) string {
	switch state {
	case prompt.TriAll:
		return "[x] "
	case prompt.TriSome:
		return "[-] "
	default:
		return "[ ] "
	}
}

// renderNode renders a single tree node.
func (m filePickerModel) renderNode(node *fileNode, isSelected bool) string {
	indent := strings.Repeat("  ", node.Depth)
	if node.IsPlaceholder {
		return pickerHelpStyle.Render(indent + "    " + node.Name)
	}

	state := node.State
	if !node.IsDir {
		state = prompt.TriNone
		if m.isChosen(node.RelPath) {
			state = prompt.TriAll
		}
	}

	icon := "  "
	name := node.Name
	if node.IsDir {
		icon = "▶ "
		if node.IsExpanded {
			icon = "▼ "
		}
		name += "/"
	}

	avail := m.width - len(indent) - 6
	line := indent + checkbox(state) + icon + truncate(name, avail)
	if node.LoadErr != nil {
		line += "  " + pickerErrorStyle.Render("unreadable")
	}

	switch {
	case isSelected:
		return pickerSelectedStyle.Render(line)
	case state == prompt.TriAll:
		return pickerChosenStyle.Render(line)
	case state == prompt.TriSome:
		return pickerPartialStyle.Render(line)
	case node.IsDir:
		return pickerDirStyle.Render(line)
	default:
		return line
	}
}

// RunFilePicker runs the interactive file picker for one slot.
func RunFilePicker(ctx context.Context, slot string, dir fs.DirectoryHandle, excludes *fs.ExcludeList, bound []string) (FilePickerResult, error) {
	m := newFilePickerModel(ctx, slot, dir, excludes, bound)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithOutput(output))

	finalModel, err := p.Run()
	if err != nil {
		return FilePickerResult{Aborted: true}, err
	}

	return finalModel.(filePickerModel).result, nil
}

package changes

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleList = `Here are the edits you asked for.

<changed_files>
  <file>
    <file_summary> Add greeting helper </file_summary>
    <file_operation>CREATE</file_operation>
    <file_path>pkg/greet.go</file_path>
    <file_code><![CDATA[
package pkg

func Greet() string { return "hi & bye" }
]]></file_code>
  </file>
  <file>
    <file_summary>Tweak readme</file_summary>
    <file_operation>update</file_operation>
    <file_path> README.md </file_path>
    <file_code>
      <![CDATA[# Title
]]>
    </file_code>
  </file>
  <file>
    <file_summary>Remove old</file_summary>
    <file_operation>DELETE</file_operation>
    <file_path>old.txt</file_path>
  </file>
  <file>
    <file_operation>RENAME</file_operation>
    <file_path>x</file_path>
  </file>
  <file>
    <file_operation>CREATE</file_operation>
    <file_path>  </file_path>
  </file>
</changed_files>

Let me know if you need anything else.`

func TestParse(t *testing.T) {
	list, err := Parse(sampleList)
	require.NoError(t, err)
	require.Len(t, list.Changes, 3)

	assert.Equal(t, Change{
		Summary:   "Add greeting helper",
		Operation: OpCreate,
		Path:      "pkg/greet.go",
		Code:      "package pkg\n\nfunc Greet() string { return \"hi & bye\" }\n",
	}, list.Changes[0])

	assert.Equal(t, OpUpdate, list.Changes[1].Operation)
	assert.Equal(t, "README.md", list.Changes[1].Path)
	assert.Equal(t, "# Title\n", list.Changes[1].Code)

	assert.Equal(t, OpDelete, list.Changes[2].Operation)
	assert.Equal(t, "", list.Changes[2].Code)

	require.Len(t, list.Invalid, 2)
	assert.Equal(t, 3, list.Invalid[0].Index)
	assert.Equal(t, "file_operation", list.Invalid[0].Field)
	assert.Equal(t, 4, list.Invalid[1].Index)
	assert.Equal(t, "file_path", list.Invalid[1].Field)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"no root", "just prose"},
		{"unclosed", "<changed_files><file>"},
		{"malformed", "<changed_files><file><file_path>a</file_operation></file></changed_files>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in)
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestParseEmptyList(t *testing.T) {
	list, err := Parse("<changed_files></changed_files>")
	require.NoError(t, err)
	assert.Empty(t, list.Changes)
	assert.Empty(t, list.Invalid)
}

func TestApply(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("old"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "old.txt"), []byte("bye"), 0o644))

	changes := []Change{
		{Operation: OpCreate, Path: "pkg/greet.go", Code: "package pkg\n"},
		{Operation: OpUpdate, Path: "README.md", Code: "# New\n"},
		{Operation: OpDelete, Path: "old.txt"},
		{Operation: OpDelete, Path: "never-existed.txt"},
		{Operation: OpCreate, Path: "../escape.txt", Code: "x"},
		{Operation: OpCreate, Path: "/etc/passwd", Code: "x"},
	}

	result, err := Apply(root, changes, ApplyOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"pkg/greet.go"}, result.Created)
	assert.Equal(t, []string{"README.md"}, result.Updated)
	assert.Equal(t, []string{"old.txt"}, result.Deleted)
	assert.Equal(t, []string{"never-existed.txt"}, result.Skipped)
	require.Len(t, result.Failed, 2)
	assert.True(t, result.HasFailures())

	var escape *PathEscapeError
	assert.ErrorAs(t, result.Failed[0], &escape)
	assert.ErrorAs(t, result.Failed[1], &escape)

	data, err := os.ReadFile(filepath.Join(root, "pkg", "greet.go"))
	require.NoError(t, err)
	assert.Equal(t, "package pkg\n", string(data))

	info, err := os.Stat(filepath.Join(root, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "update keeps the file mode")

	_, err = os.Stat(filepath.Join(root, "old.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(filepath.Dir(root), "escape.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestApplyDryRun(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "keep.txt"), []byte("k"), 0o644))

	result, err := Apply(root, []Change{
		{Operation: OpCreate, Path: "new.txt", Code: "n"},
		{Operation: OpDelete, Path: "keep.txt"},
		{Operation: OpUpdate, Path: "missing.txt", Code: "m"},
	}, ApplyOptions{DryRun: true})
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, []string{"new.txt"}, result.Created)
	assert.Equal(t, []string{"keep.txt"}, result.Deleted)
	assert.Equal(t, []string{"missing.txt"}, result.Updated)
	assert.Len(t, result.Warnings, 1)

	_, err = os.Stat(filepath.Join(root, "new.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "keep.txt"))
	assert.NoError(t, err)
}

func TestApplyMissingRoot(t *testing.T) {
	_, err := Apply(filepath.Join(t.TempDir(), "nope"), nil, ApplyOptions{})
	var notFound *TargetNotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestApplyRefusesSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("keep"), 0o644))
	if err := os.Symlink(outside, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.txt"), filepath.Join(root, "secret.txt")))
	require.NoError(t, os.Mkdir(filepath.Join(root, "real"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "alias")))

	result, err := Apply(root, []Change{
		{Operation: OpCreate, Path: "link/evil.txt", Code: "x"},
		{Operation: OpCreate, Path: "link/deep/evil.txt", Code: "x"},
		{Operation: OpUpdate, Path: "secret.txt", Code: "overwritten"},
		{Operation: OpCreate, Path: "alias/ok.txt", Code: "ok"},
	}, ApplyOptions{})
	require.NoError(t, err)

	require.Len(t, result.Failed, 3)
	for _, f := range result.Failed {
		var escape *PathEscapeError
		assert.ErrorAs(t, f, &escape)
	}
	assert.Equal(t, []string{"alias/ok.txt"}, result.Created)

	_, err = os.Stat(filepath.Join(outside, "evil.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(outside, "deep"))
	assert.True(t, os.IsNotExist(err))
	data, err := os.ReadFile(filepath.Join(outside, "secret.txt"))
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
	data, err = os.ReadFile(filepath.Join(root, "real", "ok.txt"))
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
}

func TestResolvePath(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		rel string
		ok  bool
	}{
		{"a.txt", true},
		{"dir/../a.txt", true},
		{"./dir/b.txt", true},
		{"..", false},
		{"../x", false},
		{"dir/../../x", false},
		{".", false},
		{"/abs", false},
		{"", false},
	}
	for _, tt := range tests {
		_, err := resolvePath(root, tt.rel)
		if tt.ok {
			assert.NoError(t, err, tt.rel)
		} else {
			assert.Error(t, err, tt.rel)
		}
	}
}

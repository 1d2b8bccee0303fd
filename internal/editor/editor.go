package editor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
)

// PreferredEditor finds a suitable editor from env or common defaults.
func PreferredEditor() (string, error) {
	if v := os.Getenv("VISUAL"); v != "" {
		return v, nil
	}
	if e := os.Getenv("EDITOR"); e != "" {
		return e, nil
	}
	for _, cand := range []string{"nvim", "vim", "vi", "nano"} {
		if p, err := exec.LookPath(cand); err == nil {
			return p, nil
		}
	}
	return "", errors.New("no editor found; set $EDITOR or $VISUAL")
}

// Streams is the terminal the editor runs on.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Edit opens path in the user's editor and reports whether the file
// changed. The file must exist.
func Edit(ctx context.Context, path string, st Streams) (final []byte, changed bool, err error) {
	before, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	ed, err := PreferredEditor()
	if err != nil {
		return nil, false, err
	}
	// VISUAL/EDITOR may carry flags, so run it through the shell.
	cmd := exec.CommandContext(ctx, "sh", "-c", "$EDITORCMD \"$FILEPATH\"")
	cmd.Env = append(os.Environ(), "EDITORCMD="+strings.TrimSpace(ed), "FILEPATH="+path)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
	if st.In != nil {
		cmd.Stdin = st.In
	}
	if st.Out != nil {
		cmd.Stdout = st.Out
	}
	if st.Err != nil {
		cmd.Stderr = st.Err
	}
	if err := cmd.Run(); err != nil {
		return nil, false, err
	}
	after, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	return after, !bytes.Equal(after, before), nil
}

// SPDX-FileCopyrightText: 2026 Mikołaj Kuranowski
// SPDX-License-Identifier: MIT

package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"
)

// Source provides raw relations of a single schedule snapshot.
type Source interface {
	Schema() Schema
	Open(ctx context.Context, rel Relation) (io.ReadCloser, error)
}

// Dir reads relations from CSV files named "<relation>.csv", using the LogicalSchema.
type Dir struct {
	FS fs.FS
}

func (Dir) Schema() Schema { return LogicalSchema }

func (d Dir) Open(_ context.Context, rel Relation) (io.ReadCloser, error) {
	return d.FS.Open(LogicalSchema[rel].Name + ".csv")
}

const DefaultMDBExportTool = "mdb-export"

// MDB reads relations from an MS Access database file by calling the mdb-export tool,
// as described by MZDiKSchema.
type MDB struct {
	Path string

	// Tool is the path to the mdb-export executable, defaults to DefaultMDBExportTool.
	Tool string
}

func (MDB) Schema() Schema { return MZDiKSchema }

func (m MDB) Open(ctx context.Context, rel Relation) (io.ReadCloser, error) {
	table := MZDiKSchema[rel].Name

	var stdout, stderr bytes.Buffer
	cmd := m.command(ctx, table)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("mdb-export %s %s: %w: %s", m.Path, table, err, strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("mdb-export %s %s: %w", m.Path, table, err)
	}

	return io.NopCloser(&stdout), nil
}

func (m MDB) command(ctx context.Context, table string) *exec.Cmd {
	tool := m.Tool
	if tool == "" {
		tool = DefaultMDBExportTool
	}

	cmd := exec.CommandContext(ctx, tool, m.Path, table)
	cmd.Env = append(os.Environ(), "MDB_JET3_CHARSET=CP1250")
	return cmd
}

// Package share turns one faction's build into a compact URL-safe token and
// back.
//
// A token is base64url (no padding) over a format byte and a body. The body
// is a sequence of unsigned varints: codec version, faction index, a string
// table of building ids, the grid shape with each cell as a table reference
// (0 for empty), and the placement order as (row, group, cell) triples.
// Format 'z' marks an lz4-compressed body and is used only when it is
// shorter than the raw form 'r'.
package share

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/pierrec/lz4"

	"github.com/tatianab/spice-planner/internal/models"
)

// QueryParam is the share URL query parameter carrying the token.
const QueryParam = "build"

const (
	codecVersion = 1
	formatRaw    = 'r'
	formatLZ4    = 'z'

	maxBodyBytes = 64 << 10
	maxCount     = 1024
	maxIDBytes   = 256
)

var errMalformed = errors.New("share: malformed token")

// Encode renders b as a share token.
func Encode(b models.SharedBuild) string {
	body := encodeBody(b)
	token := append([]byte{formatRaw}, body...)
	if packed, err := compress(body); err == nil && len(packed)+1 < len(token) {
		token = append([]byte{formatLZ4}, packed...)
	}
	return base64.RawURLEncoding.EncodeToString(token)
}

func encodeBody(b models.SharedBuild) []byte {
	var buf []byte
	put := func(v int) { buf = binary.AppendUvarint(buf, uint64(v)) }

	put(codecVersion)
	put(b.Faction.Index())

	refs := map[string]int{}
	var table []string
	for _, row := range b.State {
		for _, group := range row {
			for _, cell := range group {
				if _, ok := refs[cell]; cell != "" && !ok {
					refs[cell] = len(table) + 1
					table = append(table, cell)
				}
			}
		}
	}
	put(len(table))
	for _, id := range table {
		put(len(id))
		buf = append(buf, id...)
	}

	put(len(b.State))
	for _, row := range b.State {
		put(len(row))
		for _, group := range row {
			put(len(group))
			for _, cell := range group {
				put(refs[cell])
			}
		}
	}

	put(len(b.Order))
	for _, c := range b.Order {
		put(c.Row)
		put(c.Group)
		put(c.Cell)
	}
	return buf
}

// DecodeToken parses a share token. Tokens that are malformed, name an
// unknown faction, do not fit the faction's layout, or carry an order that
// disagrees with the grid are rejected.
func DecodeToken(token string) (models.SharedBuild, bool) {
	b, err := decodeToken(strings.TrimSpace(token))
	if err != nil || !b.Valid() {
		return models.SharedBuild{}, false
	}
	return b, true
}

// Decode reads the share token from a query string ("?build=..."), a bare
// query ("build=...") or a full URL. It reports false when the parameter is
// absent or the token is unusable, so callers fall back to normal startup.
func Decode(query string) (models.SharedBuild, bool) {
	query = strings.TrimSpace(query)
	if strings.Contains(query, "://") {
		u, err := url.Parse(query)
		if err != nil {
			return models.SharedBuild{}, false
		}
		query = u.RawQuery
	}
	values, err := url.ParseQuery(strings.TrimPrefix(query, "?"))
	if err != nil {
		return models.SharedBuild{}, false
	}
	token := values.Get(QueryParam)
	if token == "" {
		return models.SharedBuild{}, false
	}
	return DecodeToken(token)
}

// ShareURL returns base with the token set as the share query parameter.
func ShareURL(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse share base url: %w", err)
	}
	q := u.Query()
	q.Set(QueryParam, token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func decodeToken(token string) (models.SharedBuild, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) < 2 {
		return models.SharedBuild{}, errMalformed
	}
	body := raw[1:]
	switch raw[0] {
	case formatRaw:
	case formatLZ4:
		body, err = decompress(body)
		if err != nil {
			return models.SharedBuild{}, errMalformed
		}
	default:
		return models.SharedBuild{}, errMalformed
	}
	return decodeBody(body)
}

func decodeBody(body []byte) (models.SharedBuild, error) {
	r := bytes.NewReader(body)
	get := func(limit int) (int, error) {
		v, err := binary.ReadUvarint(r)
		if err != nil || v > uint64(limit) {
			return 0, errMalformed
		}
		return int(v), nil
	}

	version, err := get(maxCount)
	if err != nil || version != codecVersion {
		return models.SharedBuild{}, errMalformed
	}
	fi, err := get(len(models.Factions) - 1)
	if err != nil {
		return models.SharedBuild{}, err
	}
	b := models.SharedBuild{Faction: models.Factions[fi]}

	n, err := get(maxCount)
	if err != nil {
		return models.SharedBuild{}, err
	}
	table := make([]string, n)
	for i := range table {
		size, err := get(maxIDBytes)
		if err != nil {
			return models.SharedBuild{}, err
		}
		id := make([]byte, size)
		if _, err := io.ReadFull(r, id); err != nil || size == 0 {
			return models.SharedBuild{}, errMalformed
		}
		table[i] = string(id)
	}

	rows, err := get(maxCount)
	if err != nil {
		return models.SharedBuild{}, err
	}
	b.State = make(models.BaseState, rows)
	for ri := range b.State {
		groups, err := get(maxCount)
		if err != nil {
			return models.SharedBuild{}, err
		}
		b.State[ri] = make([][]string, groups)
		for gi := range b.State[ri] {
			cells, err := get(maxCount)
			if err != nil {
				return models.SharedBuild{}, err
			}
			b.State[ri][gi] = make([]string, cells)
			for ci := range b.State[ri][gi] {
				ref, err := get(len(table))
				if err != nil {
					return models.SharedBuild{}, err
				}
				if ref > 0 {
					b.State[ri][gi][ci] = table[ref-1]
				}
			}
		}
	}

	entries, err := get(maxCount)
	if err != nil {
		return models.SharedBuild{}, err
	}
	b.Order = make(models.BuildingOrder, entries)
	for i := range b.Order {
		var triple [3]int
		for j := range triple {
			if triple[j], err = get(maxCount); err != nil {
				return models.SharedBuild{}, err
			}
		}
		b.Order[i] = models.Coord{Row: triple[0], Group: triple[1], Cell: triple[2]}
	}
	if r.Len() != 0 {
		return models.SharedBuild{}, errMalformed
	}
	return b, nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := lz4.NewWriter(&buf)
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	reader := lz4.NewReader(bytes.NewReader(data))
	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(reader, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if n > maxBodyBytes {
		return nil, errMalformed
	}
	return buf.Bytes(), nil
}

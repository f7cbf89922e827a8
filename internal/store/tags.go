package store

import (
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/solana-keyring/keyring/internal/keyringerr"
)

// junction describes one of the three tag junction tables keyed by a record
// table's primary key.
type junction struct {
	table    string
	recordFK string
}

var (
	keypairJunction  = junction{"keypair_tags", "keypair_id"}
	ledgerJunction   = junction{"ledger_tags", "ledger_id"}
	squadsJunction   = junction{"squads_tags", "squads_id"}
)

// ensureTagID returns the id of the tag named name, creating the row if
// absent (add_tag is idempotent per spec §4.1).
func ensureTagID(tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRow(`SELECT id FROM tags WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, keyringerr.Wrap(keyringerr.Internal, "lookup tag", err)
	}
	res, err := tx.Exec(`INSERT INTO tags (name) VALUES (?)`, name)
	if err != nil {
		return 0, keyringerr.Wrap(keyringerr.Internal, "insert tag", err)
	}
	return res.LastInsertId()
}

// linkTag idempotently links recordID to the tag named name within tx.
func linkTag(tx *sql.Tx, j junction, recordID int64, name string) error {
	tagID, err := ensureTagID(tx, name)
	if err != nil {
		return err
	}
	// OR IGNORE makes re-linking an already-linked tag a no-op (idempotent).
	_, err = tx.Exec(
		`INSERT OR IGNORE INTO `+j.table+` (`+j.recordFK+`, tag_id) VALUES (?, ?)`,
		recordID, tagID,
	)
	if err != nil {
		return keyringerr.Wrap(keyringerr.Internal, "link tag", err)
	}
	return nil
}

// unlinkTag removes the link between recordID and tag name, if present.
// Unknown tags or missing links are not an error (remove_tag is idempotent).
func unlinkTag(tx *sql.Tx, j junction, recordID int64, name string) error {
	_, err := tx.Exec(
		`DELETE FROM `+j.table+` WHERE `+j.recordFK+` = ? AND tag_id = (SELECT id FROM tags WHERE name = ?)`,
		recordID, name,
	)
	if err != nil {
		return keyringerr.Wrap(keyringerr.Internal, "unlink tag", err)
	}
	return nil
}

// tagFilterClause returns a SQL fragment and args restricting a record
// query to rows linked to tag (via junction j), or ("", nil) if tag is nil.
func tagFilterClause(j junction, recordTable string, tag *string) (string, []interface{}) {
	if tag == nil {
		return "", nil
	}
	clause := recordTable + `.id IN (
		SELECT ` + j.recordFK + ` FROM ` + j.table + `
		JOIN tags ON tags.id = ` + j.table + `.tag_id
		WHERE tags.name = ?
	)`
	return clause, []interface{}{*tag}
}

/*
Copyright 2026 The qscan Authors. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package journal

// Schema creates the journal tables.
const Schema = `
-- One row per field written by qscan patch
CREATE TABLE IF NOT EXISTS edits (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,          -- uuid shared by the edits of one invocation
    file TEXT NOT NULL,            -- absolute path of the data file
    record_id TEXT NOT NULL,
    field TEXT NOT NULL,
    old_sha TEXT NOT NULL,         -- sha256 of the value expression before the edit
    new_sha TEXT NOT NULL,         -- sha256 of the value expression after the edit
    applied_at TEXT NOT NULL       -- RFC 3339, UTC
);

CREATE INDEX IF NOT EXISTS idx_edits_field
    ON edits(file, record_id, field);

CREATE INDEX IF NOT EXISTS idx_edits_run
    ON edits(run_id);
`

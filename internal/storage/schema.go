package storage

const schema = `
-- The 'predictions' table is an append-only log of predicted intervals.
-- The prediction pipeline never reads it; it feeds the history endpoint
-- and offline inspection of what the model is doing in production.
CREATE TABLE IF NOT EXISTS predictions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    item_id TEXT NOT NULL,
    subject TEXT NOT NULL,
    difficulty TEXT NOT NULL,
    interval_days REAL NOT NULL,
    created_at DATETIME NOT NULL
);

-- The 'ease_history' table records every ease-factor adjustment.
CREATE TABLE IF NOT EXISTS ease_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    item_id TEXT NOT NULL,
    old_ease REAL NOT NULL,
    new_ease REAL NOT NULL,
    performance REAL NOT NULL,
    created_at DATETIME NOT NULL
);
`

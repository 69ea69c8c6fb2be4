package postgres

// Embedded migration SQL. Versioned, applied in order by the Migrator.

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: USER STATS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
CREATE TABLE IF NOT EXISTS user_stats (
    user_id             TEXT PRIMARY KEY,
    display_name        TEXT NOT NULL,
    net_savings_cents   BIGINT NOT NULL DEFAULT 0,
    current_streak      INTEGER NOT NULL DEFAULT 0,
    longest_streak      INTEGER NOT NULL DEFAULT 0,
    last_activity_date  DATE,
    experience_points   INTEGER NOT NULL DEFAULT 0,
    level               INTEGER NOT NULL DEFAULT 1,
    title               TEXT NOT NULL DEFAULT 'Beginner',
    campus              TEXT NOT NULL DEFAULT '',
    timezone            TEXT NOT NULL DEFAULT 'UTC',
    goals_completed     INTEGER NOT NULL DEFAULT 0,
    hustles_completed   INTEGER NOT NULL DEFAULT 0,
    achievements_shared INTEGER NOT NULL DEFAULT 0,
    created_at          TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at          TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

-- Streak-risk scan: everyone whose last activity was exactly yesterday.
CREATE INDEX IF NOT EXISTS idx_user_stats_last_activity
    ON user_stats (last_activity_date)
    WHERE current_streak > 0;

CREATE INDEX IF NOT EXISTS idx_user_stats_campus
    ON user_stats (campus)
    WHERE campus <> '';
`

const migration001Down = `
DROP TABLE IF EXISTS user_stats;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: BADGES & ACHIEVEMENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
CREATE TABLE IF NOT EXISTS badge_definitions (
    id                TEXT PRIMARY KEY,
    name              TEXT NOT NULL,
    description       TEXT NOT NULL DEFAULT '',
    category          TEXT NOT NULL,
    icon              TEXT NOT NULL DEFAULT '',
    rarity            TEXT NOT NULL DEFAULT 'common',
    requirement_type  TEXT NOT NULL,
    requirement_value BIGINT NOT NULL,
    points_awarded    INTEGER NOT NULL DEFAULT 0,
    special_perks     TEXT[] NOT NULL DEFAULT '{}',
    sort_order        INTEGER NOT NULL DEFAULT 0,
    active            BOOLEAN NOT NULL DEFAULT TRUE,
    created_at        TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS user_badges (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    badge_id             TEXT NOT NULL REFERENCES badge_definitions(id),
    earned_at            TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    showcased            BOOLEAN NOT NULL DEFAULT FALSE,
    snap_savings_cents   BIGINT NOT NULL DEFAULT 0,
    snap_current_streak  INTEGER NOT NULL DEFAULT 0,
    snap_xp              INTEGER NOT NULL DEFAULT 0,
    snap_level           INTEGER NOT NULL DEFAULT 1,

    -- The engine's primary idempotency invariant: at most one award per
    -- (user, badge). Concurrent double-awards resolve here.
    CONSTRAINT user_badges_user_badge_unique UNIQUE (user_id, badge_id)
);

CREATE INDEX IF NOT EXISTS idx_user_badges_user
    ON user_badges (user_id, earned_at DESC);

CREATE TABLE IF NOT EXISTS achievements (
    id                   TEXT PRIMARY KEY,
    user_id              TEXT NOT NULL,
    kind                 TEXT NOT NULL,
    title                TEXT NOT NULL,
    description          TEXT NOT NULL DEFAULT '',
    points               INTEGER NOT NULL DEFAULT 0,
    shareable            BOOLEAN NOT NULL DEFAULT TRUE,
    is_shared            BOOLEAN NOT NULL DEFAULT FALSE,
    should_celebrate     BOOLEAN NOT NULL DEFAULT FALSE,
    celebration_priority TEXT NOT NULL DEFAULT '',
    created_at           TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_achievements_user
    ON achievements (user_id, created_at DESC);
`

const migration002Down = `
DROP TABLE IF EXISTS achievements;
DROP TABLE IF EXISTS user_badges;
DROP TABLE IF EXISTS badge_definitions;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: LEADERBOARD ENTRIES
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
CREATE TABLE IF NOT EXISTS leaderboard_entries (
    board_type   TEXT NOT NULL,
    period       TEXT NOT NULL,
    scope        TEXT NOT NULL DEFAULT '',
    user_id      TEXT NOT NULL,
    display_name TEXT NOT NULL,
    campus       TEXT NOT NULL DEFAULT '',
    score        BIGINT NOT NULL DEFAULT 0,
    rank         INTEGER NOT NULL DEFAULT 0,
    updated_at   TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    PRIMARY KEY (board_type, period, scope, user_id)
);

CREATE INDEX IF NOT EXISTS idx_leaderboard_rank
    ON leaderboard_entries (board_type, period, scope, rank);

-- Global-view dedup reads every scope of a (type, period) pair at once.
CREATE INDEX IF NOT EXISTS idx_leaderboard_type_period
    ON leaderboard_entries (board_type, period);
`

const migration003Down = `
DROP TABLE IF EXISTS leaderboard_entries;
`

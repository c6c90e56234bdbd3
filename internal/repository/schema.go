package repository

// SchemaStatements creates the fest schema. Constraint and index names are
// referenced by constraintReasons and must stay in sync with it.
var SchemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'participant'
			CONSTRAINT users_role_check CHECK (role IN ('participant', 'crew', 'organizer', 'admin')),
		payment_status TEXT NOT NULL DEFAULT 'CREATED'
			CONSTRAINT users_payment_status_check CHECK (payment_status IN ('CREATED', 'UNPAID', 'PAID', 'EXEMPTED', 'FAILED')),
		profile_completed BOOLEAN NOT NULL DEFAULT FALSE,
		institution_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_key ON users (LOWER(email))`,

	`CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		mode TEXT NOT NULL CONSTRAINT events_mode_check CHECK (mode IN ('solo', 'team')),
		capacity INTEGER NOT NULL CONSTRAINT events_capacity_check CHECK (capacity > 0),
		min_team_size INTEGER NOT NULL DEFAULT 1,
		max_team_size INTEGER NOT NULL DEFAULT 1,
		opens_at TIMESTAMPTZ NOT NULL,
		closes_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT events_team_size_check CHECK (min_team_size >= 1 AND min_team_size <= max_team_size),
		CONSTRAINT events_window_check CHECK (opens_at < closes_at)
	)`,

	`CREATE TABLE IF NOT EXISTS rounds (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		number INTEGER NOT NULL CONSTRAINT rounds_number_check CHECK (number >= 1),
		starts_at TIMESTAMPTZ NOT NULL,
		ends_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT rounds_event_number_key UNIQUE (event_id, number)
	)`,

	`CREATE TABLE IF NOT EXISTS rules (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		text TEXT NOT NULL,
		CONSTRAINT rules_event_position_key UNIQUE (event_id, position)
	)`,

	`CREATE TABLE IF NOT EXISTS prizes (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		position INTEGER NOT NULL CONSTRAINT prizes_position_check CHECK (position >= 1),
		reward TEXT NOT NULL,
		CONSTRAINT prizes_event_position_key UNIQUE (event_id, position)
	)`,

	`CREATE TABLE IF NOT EXISTS event_crew (
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		duty TEXT NOT NULL DEFAULT '',
		CONSTRAINT event_crew_pkey PRIMARY KEY (event_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS teams (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL CONSTRAINT teams_name_key UNIQUE,
		leader_id UUID NOT NULL REFERENCES users(id),
		event_id UUID REFERENCES events(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS team_members (
		team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT team_members_pkey PRIMARY KEY (team_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_team_members_user ON team_members (user_id)`,

	`CREATE TABLE IF NOT EXISTS invitations (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		invitee_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		inviter_id UUID NOT NULL REFERENCES users(id),
		status TEXT NOT NULL DEFAULT 'pending'
			CONSTRAINT invitations_status_check CHECK (status IN ('pending', 'accepted', 'declined')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		responded_at TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS invitations_pending_uniq ON invitations (team_id, invitee_id) WHERE status = 'pending'`,
	`CREATE INDEX IF NOT EXISTS idx_invitations_invitee ON invitations (invitee_id) WHERE status = 'pending'`,

	`CREATE TABLE IF NOT EXISTS registrations (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		user_id UUID REFERENCES users(id) ON DELETE CASCADE,
		team_id UUID REFERENCES teams(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT registrations_target_check CHECK ((user_id IS NULL) <> (team_id IS NULL)),
		CONSTRAINT registrations_event_user_key UNIQUE (event_id, user_id),
		CONSTRAINT registrations_event_team_key UNIQUE (event_id, team_id)
	)`,

	`CREATE TABLE IF NOT EXISTS check_ins (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		round_id UUID NOT NULL REFERENCES rounds(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		team_id UUID REFERENCES teams(id) ON DELETE SET NULL,
		checked_in_by UUID NOT NULL REFERENCES users(id),
		checked_in_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT check_ins_user_round_key UNIQUE (user_id, round_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_check_ins_round_team ON check_ins (round_id, team_id)`,

	`CREATE TABLE IF NOT EXISTS round_results (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		round_id UUID NOT NULL REFERENCES rounds(id) ON DELETE CASCADE,
		user_id UUID REFERENCES users(id) ON DELETE CASCADE,
		team_id UUID REFERENCES teams(id) ON DELETE CASCADE,
		points DOUBLE PRECISION NOT NULL DEFAULT 0,
		status TEXT NOT NULL
			CONSTRAINT round_results_status_check CHECK (status IN ('QUALIFIED', 'ELIMINATED', 'DISQUALIFIED')),
		evaluated_by UUID NOT NULL REFERENCES users(id),
		evaluated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT round_results_target_check CHECK ((user_id IS NULL) <> (team_id IS NULL)),
		CONSTRAINT round_results_round_user_key UNIQUE (round_id, user_id),
		CONSTRAINT round_results_round_team_key UNIQUE (round_id, team_id)
	)`,

	`CREATE TABLE IF NOT EXISTS prize_awards (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		prize_id UUID NOT NULL REFERENCES prizes(id) ON DELETE CASCADE,
		user_id UUID REFERENCES users(id) ON DELETE CASCADE,
		team_id UUID REFERENCES teams(id) ON DELETE CASCADE,
		awarded_by UUID NOT NULL REFERENCES users(id),
		awarded_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT prize_awards_target_check CHECK ((user_id IS NULL) <> (team_id IS NULL)),
		CONSTRAINT prize_awards_prize_user_key UNIQUE (prize_id, user_id),
		CONSTRAINT prize_awards_prize_team_key UNIQUE (prize_id, team_id)
	)`,
}

// DropStatements removes every fest table.
var DropStatements = []string{
	`DROP TABLE IF EXISTS prize_awards CASCADE`,
	`DROP TABLE IF EXISTS round_results CASCADE`,
	`DROP TABLE IF EXISTS check_ins CASCADE`,
	`DROP TABLE IF EXISTS registrations CASCADE`,
	`DROP TABLE IF EXISTS invitations CASCADE`,
	`DROP TABLE IF EXISTS team_members CASCADE`,
	`DROP TABLE IF EXISTS teams CASCADE`,
	`DROP TABLE IF EXISTS event_crew CASCADE`,
	`DROP TABLE IF EXISTS prizes CASCADE`,
	`DROP TABLE IF EXISTS rules CASCADE`,
	`DROP TABLE IF EXISTS rounds CASCADE`,
	`DROP TABLE IF EXISTS events CASCADE`,
	`DROP TABLE IF EXISTS users CASCADE`,
}

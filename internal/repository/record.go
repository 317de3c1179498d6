package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/tents-server/internal/tents"
)

// GameRecord is a finished game. Live games never reach the database.
type GameRecord struct {
	GameRecordId  int64              `db:"game_record_id"`
	SessionId     uuid.UUID          `db:"session_id"`
	PlayerId      *int64             `db:"player_id"`
	Dimension     int                `db:"dimension"`
	TentDensity   float64            `db:"tent_density"`
	StartLives    int                `db:"start_lives"`
	LivesLeft     int                `db:"lives_left"`
	Tents         int                `db:"tents"`
	TentsRevealed int                `db:"tents_revealed"`
	Won           bool               `db:"won"`
	StartedAt     pgtype.Timestamptz `db:"started_at"`
	EndedAt       pgtype.Timestamptz `db:"ended_at"`
	State         []byte             `db:"state"`
	CreatedAt     pgtype.Timestamptz `db:"created_at"`
}

type CreateRecordParams struct {
	SessionId uuid.UUID
	PlayerId  *int64
	StartedAt time.Time
	EndedAt   time.Time
	State     *tents.GameState
}

func (p CreateRecordParams) Args() (pgx.NamedArgs, error) {
	state, err := p.State.Bytes()
	if err != nil {
		return nil, err
	}
	counts := p.State.Counts()
	args := pgx.NamedArgs{
		"session_id":     p.SessionId,
		"player_id":      nil,
		"dimension":      p.State.Dimension,
		"tent_density":   p.State.TentDensity,
		"start_lives":    p.State.StartLives,
		"lives_left":     counts.Lives,
		"tents":          counts.Tents,
		"tents_revealed": counts.Revealed,
		"won":            p.State.Status == tents.Won,
		"started_at":     p.StartedAt,
		"ended_at":       p.EndedAt,
		"state":          state,
	}
	if p.PlayerId != nil {
		args["player_id"] = *p.PlayerId
	}
	return args, nil
}

func (q *Queries) CreateRecord(ctx context.Context, params CreateRecordParams) (*GameRecord, error) {
	args, err := params.Args()
	if err != nil {
		return nil, err
	}
	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO game_record (
			session_id, player_id, dimension, tent_density, start_lives,
			lives_left, tents, tents_revealed, won, started_at, ended_at, state
		)
		VALUES (
			@session_id, @player_id, @dimension, @tent_density, @start_lives,
			@lives_left, @tents, @tents_revealed, @won, @started_at, @ended_at, @state
		)
		RETURNING *;`,
		args,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameRecord])
}

func (q *Queries) FetchRecord(ctx context.Context, sessionId uuid.UUID) (*GameRecord, error) {
	rows, _ := q.db.Query(
		ctx, "SELECT * FROM game_record WHERE session_id = $1", sessionId,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[GameRecord])
}

type Highscore struct {
	SessionId   uuid.UUID `db:"session_id" json:"session_id"`
	Username    *string   `db:"username" json:"username"`
	Dimension   int       `db:"dimension" json:"dimension"`
	TentDensity float64   `db:"tent_density" json:"tent_density"`
	StartLives  int       `db:"start_lives" json:"start_lives"`
	LivesLeft   int       `db:"lives_left" json:"lives_left"`
	PlaytimeMs  float64   `db:"playtime_ms" json:"playtime_ms"`
}

type HighscoreFilter struct {
	Username   *string
	GameParams *tents.GameParams
}

func (f HighscoreFilter) WhereClause() (string, pgx.NamedArgs) {
	clauses := make([]string, 0)
	args := pgx.NamedArgs{}
	if f.Username != nil {
		clauses = append(clauses, "username = @username")
		args["username"] = *f.Username
	}
	if f.GameParams != nil {
		clauses = append(
			clauses,
			"dimension = @dimension",
			"tent_density = @tent_density",
			"start_lives = @start_lives",
		)
		args["dimension"] = f.GameParams.Dimension
		args["tent_density"] = f.GameParams.TentDensity
		args["start_lives"] = f.GameParams.StartLives
	}
	return strings.Join(clauses, " AND "), args
}

func (f HighscoreFilter) Query() (string, pgx.NamedArgs) {
	query := `
	SELECT
		session_id,
		username,
		dimension,
		tent_density,
		start_lives,
		lives_left,
		(
			extract('epoch' from ended_at) -
			extract('epoch' from started_at)
		) * 1000 playtime_ms
	FROM game_record
		LEFT OUTER JOIN player using (player_id)
	WHERE
		won = true
		AND tents > 0
	`

	whereClause, args := f.WhereClause()
	if whereClause != "" {
		query += " AND " + whereClause
	}

	query += " ORDER BY start_lives - lives_left, playtime_ms LIMIT 100;"
	return query, args
}

// GetHighscores lists won games that had tents to find, fewest lives lost
// first, then fastest.
func (q *Queries) GetHighscores(
	ctx context.Context, filter HighscoreFilter,
) ([]Highscore, error) {
	query, args := filter.Query()
	rows, err := q.db.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Highscore])
}

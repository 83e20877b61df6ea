package migrator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"ariga.io/atlas/sql/migrate"
	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"github.com/eleven-am/todolist/internal/logger"
	"github.com/jmoiron/sqlx"
)

// ErrDestructive is returned when a plan drops objects and the caller did
// not allow it.
var ErrDestructive = errors.New("migration contains destructive changes")

type Options struct {
	DryRun            bool
	AllowDestructive  bool
	CreateIfNotExists bool
}

// Plan is the ordered set of statements that moves a database to Schema.
type Plan struct {
	Statements []string
	Reverse    []string
	Changes    []schema.Change
}

func (p *Plan) Empty() bool {
	return p == nil || len(p.Statements) == 0
}

type Migrator struct {
	config        *DBConfig
	tempDBManager *TempDBManager
	log           logger.Logger
}

func New(config *DBConfig) *Migrator {
	return &Migrator{
		config:        config,
		tempDBManager: NewTempDBManager(config),
		log:           logger.Migration(),
	}
}

// Run creates the database if asked to, connects, and syncs the schema.
func (m *Migrator) Run(ctx context.Context, opts Options) (*Plan, error) {
	created := false
	if opts.CreateIfNotExists {
		var err error
		if created, err = EnsureDatabaseExists(ctx, m.config.URL); err != nil {
			return nil, err
		}
	}

	db, err := m.config.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	plan, err := m.Plan(ctx, db.DB, Schema, created)
	if err != nil {
		return nil, err
	}
	return plan, m.execute(ctx, db, plan, opts)
}

// Sync brings an already connected database up to Schema.
func (m *Migrator) Sync(ctx context.Context, db *sqlx.DB, opts Options) (*Plan, error) {
	plan, err := m.Plan(ctx, db.DB, Schema, false)
	if err != nil {
		return nil, err
	}
	return plan, m.execute(ctx, db, plan, opts)
}

// Plan diffs the current schema of db against targetDDL. The target is
// materialized in a temporary database and inspected. With assumeEmpty the
// current schema is not inspected.
func (m *Migrator) Plan(ctx context.Context, db *sql.DB, targetDDL string, assumeEmpty bool) (*Plan, error) {
	inspect := &schema.InspectRealmOption{Schemas: []string{"public"}}

	sourceDriver, err := postgres.Open(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	currentRealm := &schema.Realm{Schemas: []*schema.Schema{{Name: "public"}}}
	if !assumeEmpty {
		if currentRealm, err = sourceDriver.InspectRealm(ctx, inspect); err != nil {
			return nil, fmt.Errorf("failed to inspect current schema: %w", err)
		}
	}

	tempDBName := fmt.Sprintf("todo_atlas_%d", time.Now().UnixNano())
	tempDB, cleanup, err := m.tempDBManager.CreateTempDB(ctx, tempDBName)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp database: %w", err)
	}
	defer cleanup()

	if _, err := tempDB.ExecContext(ctx, targetDDL); err != nil {
		return nil, fmt.Errorf("failed to execute DDL in temp database: %w", err)
	}

	targetDriver, err := postgres.Open(tempDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create target driver: %w", err)
	}
	targetRealm, err := targetDriver.InspectRealm(ctx, inspect)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect target schema: %w", err)
	}

	changes, err := sourceDriver.RealmDiff(currentRealm, targetRealm)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate diff: %w", err)
	}
	if len(changes) == 0 {
		return &Plan{}, nil
	}

	return buildPlan(ctx, sourceDriver, changes)
}

func buildPlan(ctx context.Context, driver migrate.Driver, changes []schema.Change) (*Plan, error) {
	planned, err := driver.PlanChanges(ctx, "todo", changes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate plan: %w", err)
	}

	plan := &Plan{Changes: changes}
	for _, c := range planned.Changes {
		plan.Statements = append(plan.Statements, c.Cmd)
		switch r := any(c.Reverse).(type) {
		case string:
			if r != "" {
				plan.Reverse = append([]string{r}, plan.Reverse...)
			}
		case []string:
			plan.Reverse = append(append([]string(nil), r...), plan.Reverse...)
		}
	}
	return plan, nil
}

func (m *Migrator) execute(ctx context.Context, db *sqlx.DB, plan *Plan, opts Options) error {
	if plan.Empty() {
		m.log.Info("schema is up to date")
		return nil
	}
	if opts.DryRun {
		m.log.Info("dry run, not applying", "statements", len(plan.Statements))
		return nil
	}
	if n, descriptions := CountDestructiveChanges(plan.Changes); n > 0 && !opts.AllowDestructive {
		return fmt.Errorf("%w: %s", ErrDestructive, strings.Join(descriptions, "; "))
	}
	return m.Apply(ctx, db, plan)
}

// Apply runs every statement of the plan in one transaction.
func (m *Migrator) Apply(ctx context.Context, db *sqlx.DB, plan *Plan) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			m.log.Error("failed to rollback migration", "error", err)
		}
	}()

	for i, stmt := range plan.Statements {
		m.log.Debug("applying statement", "index", i, "sql", stmt)
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("statement %d failed: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}
	m.log.Info("migration applied", "statements", len(plan.Statements))
	return nil
}

func IsDestructiveChange(change schema.Change) bool {
	switch c := change.(type) {
	case *schema.DropTable, *schema.DropColumn, *schema.DropIndex, *schema.DropForeignKey:
		return true
	case *schema.ModifyTable:
		for _, sub := range c.Changes {
			if IsDestructiveChange(sub) {
				return true
			}
		}
	}
	return false
}

func DescribeChange(change schema.Change) string {
	switch c := change.(type) {
	case *schema.AddTable:
		return fmt.Sprintf("Create table %s", c.T.Name)
	case *schema.DropTable:
		return fmt.Sprintf("Drop table %s", c.T.Name)
	case *schema.ModifyTable:
		return fmt.Sprintf("Modify table %s (%d changes)", c.T.Name, len(c.Changes))
	case *schema.AddColumn:
		return fmt.Sprintf("Add column %s", c.C.Name)
	case *schema.DropColumn:
		return fmt.Sprintf("Drop column %s", c.C.Name)
	case *schema.ModifyColumn:
		return fmt.Sprintf("Modify column %s", c.To.Name)
	case *schema.AddIndex:
		return fmt.Sprintf("Add index %s", c.I.Name)
	case *schema.DropIndex:
		return fmt.Sprintf("Drop index %s", c.I.Name)
	case *schema.AddForeignKey:
		return fmt.Sprintf("Add foreign key %s", c.F.Symbol)
	case *schema.DropForeignKey:
		return fmt.Sprintf("Drop foreign key %s", c.F.Symbol)
	default:
		return fmt.Sprintf("Change type %T", change)
	}
}

func CountDestructiveChanges(changes []schema.Change) (count int, descriptions []string) {
	for _, change := range changes {
		if IsDestructiveChange(change) {
			count++
			descriptions = append(descriptions, DescribeChange(change))
		}
	}
	return count, descriptions
}

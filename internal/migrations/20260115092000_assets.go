package migrations

import "github.com/jmoiron/sqlx"

func init() {
	m.addMigration(&migration{
		version: "20260115092000",
		up:      mig_20260115092000_assets_up,
		down:    mig_20260115092000_assets_down,
	})
}

func mig_20260115092000_assets_up(tx *sqlx.Tx) error {
	_, err := tx.Exec(`
        CREATE TABLE IF NOT EXISTS assets (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
            scene_id UUID REFERENCES scenes(id) ON DELETE SET NULL,
            kind VARCHAR(32) NOT NULL,
            mime_type VARCHAR(255) NOT NULL,
            duration_seconds INT,
            file_path TEXT NOT NULL,
            size_bytes BIGINT NOT NULL DEFAULT 0,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
        );
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE INDEX IF NOT EXISTS idx_assets_project_id ON assets(project_id);
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE INDEX IF NOT EXISTS idx_assets_scene_id ON assets(scene_id);
    `)
	if err != nil {
		return err
	}

	return nil
}

func mig_20260115092000_assets_down(tx *sqlx.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS assets;`)
	return err
}

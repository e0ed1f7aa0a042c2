package migrations

import "github.com/jmoiron/sqlx"

func init() {
	m.addMigration(&migration{
		version: "20260115091000",
		up:      mig_20260115091000_scenes_up,
		down:    mig_20260115091000_scenes_down,
	})
}

func mig_20260115091000_scenes_up(tx *sqlx.Tx) error {
	_, err := tx.Exec(`
        CREATE TABLE IF NOT EXISTS scenes (
            id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
            project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
            position INT NOT NULL DEFAULT 0,
            description TEXT NOT NULL,
            image_prompt TEXT,
            animation_prompt TEXT,
            duration_seconds INT,
            image_asset_id UUID,
            video_asset_id UUID,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
        );
    `)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
        CREATE INDEX IF NOT EXISTS idx_scenes_project_id ON scenes(project_id);
    `)
	if err != nil {
		return err
	}

	return nil
}

func mig_20260115091000_scenes_down(tx *sqlx.Tx) error {
	_, err := tx.Exec(`DROP TABLE IF EXISTS scenes;`)
	return err
}

package db

import "fmt"

// feedbackTableSQL renders the schema for one brand's feedback collection.
// Collection names come from the catalog, so the table name is interpolated;
// catalog validation guarantees it is a plain identifier.
func feedbackTableSQL(table string, dimension int) string {
	return fmt.Sprintf(`
    DEFINE TABLE IF NOT EXISTS %[1]s SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS text ON %[1]s TYPE string;
    DEFINE FIELD IF NOT EXISTS embedding ON %[1]s TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS brand ON %[1]s TYPE string;
    DEFINE FIELD IF NOT EXISTS platform ON %[1]s TYPE string;
    DEFINE FIELD IF NOT EXISTS source_post_id ON %[1]s TYPE string;
    DEFINE FIELD IF NOT EXISTS sentiment ON %[1]s TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS category ON %[1]s TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created_date ON %[1]s TYPE option<string>;

    -- App store review fields
    DEFINE FIELD IF NOT EXISTS rating ON %[1]s TYPE option<int>;
    DEFINE FIELD IF NOT EXISTS reply_content ON %[1]s TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS review_version ON %[1]s TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS app_name ON %[1]s TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS thumbs_up ON %[1]s TYPE option<int>;

    -- Community discussion fields
    DEFINE FIELD IF NOT EXISTS engagement_score ON %[1]s TYPE option<int>;
    DEFINE FIELD IF NOT EXISTS subreddit ON %[1]s TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS num_comments ON %[1]s TYPE option<int>;
    DEFINE FIELD IF NOT EXISTS upvote_ratio ON %[1]s TYPE option<float>;
    DEFINE FIELD IF NOT EXISTS flair ON %[1]s TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS top_comment ON %[1]s TYPE option<string>;

    DEFINE FIELD IF NOT EXISTS author ON %[1]s TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS title ON %[1]s TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS url ON %[1]s TYPE option<string>;

    DEFINE INDEX IF NOT EXISTS %[1]s_platform ON %[1]s FIELDS platform;
    DEFINE INDEX IF NOT EXISTS %[1]s_source ON %[1]s FIELDS platform, source_post_id UNIQUE;
    DEFINE INDEX IF NOT EXISTS %[1]s_embedding ON %[1]s FIELDS embedding HNSW DIMENSION %[2]d DIST COSINE TYPE F32;
`, table, dimension)
}

// Package parser turns raw env-file text into key-value maps.
//
// Parsing is delegated to github.com/joho/godotenv. The package adds the two
// behaviors the resolution engine relies on: parsing never fails outright
// (malformed lines are skipped with a warning), and file content is
// transcoded to UTF-8 first so env files saved as UTF-16 by Windows tooling
// still load.
package parser

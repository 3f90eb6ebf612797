package mcpserver

// QuerySyntax documents the search syntax accepted by search_paths.
const QuerySyntax = `# cdir Query Syntax

Matching is case-insensitive in both modes.

## exact

The whole query must appear as a contiguous substring of the path.
Results keep their natural order (most recent first).

## fuzzy

The query is split on whitespace. Every token must match (logical AND).

| token   | meaning                                      |
|---------|----------------------------------------------|
| ` + "`src`" + `   | characters appear in order; ranks the result |
| ` + "`^/etc`" + ` | path starts with /etc                        |
| ` + "`src$`" + `  | path ends with src                           |
| ` + "`!tmp`" + `  | path does not contain tmp                    |
| ` + "`!src$`" + ` | path does not end with src                   |

Results are ordered by match quality: contiguous matches before scattered
ones, earlier matches first, then shorter paths, then recency.

## Example

` + "```" + `
^/home proj !old
` + "```" + `

Directories under /home whose path contains the letters p, r, o, j in
order, excluding anything containing "old".
`

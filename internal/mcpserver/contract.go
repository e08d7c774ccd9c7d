package mcpserver

// NoteFormatContract describes the canonical note format and link
// grammar that LLM consumers should follow when creating or updating
// notes.
const NoteFormatContract = `# Arbor Note Format Contract

Every note stored in Arbor follows this structure.

## Structure

- A note has a **title** (required, 1-255 characters) and a Markdown
  **body** (may be empty).
- Notes live inside folders; a note created without a folder lands in
  the first root folder.
- Word, line and character counts plus the byte size are computed by
  the server on every save. Do not include them in the content.

## Internal links

Reference other notes with a Markdown link that uses the note scheme:

` + "```" + `markdown
See [Dracula](note:6) for the full plan.
` + "```" + `

Rules:

1. The link target is ` + "`" + `note:<id>` + "`" + ` where ` + "`" + `<id>` + "`" + ` is the numeric note id.
   ` + "`" + `note://<id>` + "`" + ` and ` + "`" + `/note/<id>` + "`" + ` are accepted from older exports.
2. The label is free text. It usually matches the target's title at the
   time of writing; it is NOT rewritten when the target is renamed.
3. Links to binned or purged notes stay in the content and render as
   dead links until the target is restored.
4. Backlinks are derived from these links automatically; never maintain
   a backlinks section by hand.
5. Ordinary web links (` + "`" + `https://...` + "`" + `) are untouched and open externally.

## Example

` + "```" + `markdown
Met with the count's solicitor today.

Cross-reference: [Jonathan Harker](note:3) and the
[journey log](note:12). Background reading at
[the archive](https://example.org/archive).
` + "```" + `
`

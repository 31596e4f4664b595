package mcpserver

// NoteFormatContract describes how notes are stored, exported and rendered,
// for LLM consumers that create or import notes.
const NoteFormatContract = `# Blog Notes Format Contract

Notes are kept as one JSON array, newest first. The same text is produced by
export_notes and accepted by import_notes.

## Note object

` + "```" + `json
{
  "id": 1767366245000,
  "title": "Trip",
  "content": "<p>Hello <b>world</b></p>",
  "files": [{"name": "a.png", "size": 2048, "type": "image/png"}],
  "timestamp": "1/2/2026, 3:04:05 PM"
}
` + "```" + `

## Rules

1. **id** is the creation time in milliseconds since the Unix epoch. Ids are
   unique within a collection; delete_note removes every note with the id.
2. **title** is required. Surrounding whitespace is trimmed before saving.
3. **content** is an HTML fragment and is required. A fragment that is only
   whitespace, a lone line break or a div wrapping a line break counts as empty.
   create_note accepts ` + "`format: markdown`" + ` and converts the text to HTML first.
4. **files** lists attachment descriptors only: name, size in bytes and MIME
   type. File contents are never stored. Stage files with stage_attachment;
   they are attached to the next note created and then cleared.
5. **timestamp** is display text fixed at creation time.

## Rendering

- Title and timestamp are HTML-escaped.
- Content is inserted as is.
- Attachment sizes are shown in KB with one decimal, e.g. ` + "`(2.0KB)`" + `.
- An empty collection renders a placeholder paragraph.

## Import

The payload must be a JSON array of note objects. Anything else is rejected and
the stored notes are left unchanged. A valid payload replaces the stored notes
completely.
`

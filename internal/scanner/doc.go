// Package scanner recovers the structure of free-form question templates.
//
// Upstream generators send plain text only, so blanks, matching columns and
// table cells are inferred from text patterns. Every function here is pure:
// callers re-derive structure from the current question text instead of
// caching it next to answers.
//
// Supported numbering: matching items use Arabic numerals or Roman numerals
// i..x followed by a period; matching options use the letters A..E followed
// by a period. Other schemes (a), 1), (i), Greek or CJK numerals) are not
// recognised and fall back to unstructured text. Because Roman labels are
// matched case-insensitively, a lone "v." or "i." inside item text (as in
// "Smith v. Jones") also starts a new item.
package scanner

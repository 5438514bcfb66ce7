// Package runeberg reads the text archives published by Project Runeberg.
//
// An unpacked archive holds a latin-1 "Metadata" file of "KEY: value" lines,
// an "Articles.lst" index mapping chapter titles to page ranges, and one
// "Pages/NNNN.txt" file per scanned page. [LoadBook] parses the first two;
// [ReadPages] and [ChapterBody] produce the text of one chapter.
package runeberg

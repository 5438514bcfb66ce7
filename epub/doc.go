// Package epub writes ePub 2 books and reads them back.
//
// # Writing
//
// A [Writer] collects chapters as plain text lines carrying light HTML
// markup and packages them with the OPF package document, the NCX table
// of contents and META-INF/container.xml:
//
//	w, err := epub.NewWriter(epub.Options{Title: "Röda rummet", Author: "August Strindberg"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	w.AddChapter("Kapitel 1", lines)
//	_, err = w.WriteTo(f)
//
// The first ZIP entry is always an uncompressed "mimetype" file containing
// "application/epub+zip". Chapter markup is parsed with an HTML5 parser,
// sanitised and rendered back as well-formed XHTML.
//
// # Reading
//
// Use [Open] to open a file by path, or [NewReader] to read from an
// [io.ReaderAt]. [Book.Metadata], [Book.TOC] and [Book.Chapters] expose the
// package document, the NCX tree and the spine. [Verify] runs the structural
// checks used after a book has been written.
//
// # Error Handling
//
// The package defines sentinel errors for common failure cases:
//   - [ErrInvalidEPub] – structural validation failed
//   - [ErrInvalidChapter] – a Chapter handle is invalid
//   - [ErrFileNotFound] – a requested file is not in the archive
//   - [ErrMissingTitle] – a Writer was configured without a title
//   - [ErrNoChapters] – a Writer has nothing to write
package epub

package books

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/chiyopla/bookspace/pkg/covers"
	"github.com/chiyopla/bookspace/pkg/errcodes"
	"github.com/chiyopla/bookspace/pkg/models"
	"github.com/chiyopla/bookspace/pkg/pagination"
	"github.com/chiyopla/bookspace/pkg/tags"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type SearchBooksOptions struct {
	// Keyword matches title, author, publisher, or ISBN as a substring.
	Keyword string
	// TagNames narrows the result to books carrying every named tag.
	TagNames []string
	Page     pagination.Page
}

type UpdateBookOptions struct {
	Columns []string
	// TagNames, when non-nil, replaces the book's full tag set.
	TagNames *[]string
}

type Service struct {
	db     *bun.DB
	store  *covers.Store
	signer *covers.Signer
}

func NewService(db *bun.DB, store *covers.Store, signer *covers.Signer) *Service {
	return &Service{db: db, store: store, signer: signer}
}

// decorate fills in the signed cover URL for books that have a cover.
func (svc *Service) decorate(books ...*models.Book) {
	if svc.signer == nil {
		return
	}
	for _, book := range books {
		if book.CoverImagePath != nil && *book.CoverImagePath != "" {
			book.CoverURL = svc.signer.SignedURL(*book.CoverImagePath)
		}
	}
}

// CreateBook inserts a book with its tag set. ISBNs are stored normalized and
// must be unique across the catalog.
func (svc *Service) CreateBook(ctx context.Context, book *models.Book, tagNames []string) error {
	now := time.Now()
	book.CreatedAt = now
	book.UpdatedAt = now
	book.ISBN = models.NormalizeISBN(book.ISBN)

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.Book)(nil)).
			Where("isbn = ?", book.ISBN).
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if exists {
			return errcodes.Conflict("A book with this ISBN already exists")
		}

		_, err = tx.NewInsert().Model(book).Returning("*").Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		return svc.replaceTags(ctx, tx, book, tagNames)
	})
	if err != nil {
		return err
	}

	return svc.reloadTags(ctx, book)
}

func (svc *Service) replaceTags(ctx context.Context, tx bun.Tx, book *models.Book, tagNames []string) error {
	_, err := tx.NewDelete().
		Model((*models.BookTag)(nil)).
		Where("book_id = ?", book.ID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	seen := map[int]bool{}
	for _, name := range tagNames {
		if strings.TrimSpace(name) == "" {
			continue
		}
		tag, err := tags.FindOrCreate(ctx, tx, name)
		if err != nil {
			return err
		}
		// Duplicate names in the payload collapse onto one association.
		if seen[tag.ID] {
			continue
		}
		seen[tag.ID] = true

		_, err = tx.NewInsert().
			Model(&models.BookTag{BookID: book.ID, TagID: tag.ID}).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	return nil
}

func (svc *Service) reloadTags(ctx context.Context, book *models.Book) error {
	bookTags := []*models.BookTag{}
	err := svc.db.NewSelect().
		Model(&bookTags).
		Relation("Tag").
		Where("bt.book_id = ?", book.ID).
		Order("bt.id ASC").
		Scan(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	book.Tags = bookTags
	svc.decorate(book)
	return nil
}

// RetrieveBook returns one book with its tags.
func (svc *Service) RetrieveBook(ctx context.Context, id int) (*models.Book, error) {
	book := &models.Book{}
	err := svc.db.NewSelect().
		Model(book).
		Relation("Tags.Tag").
		Where("b.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}
	svc.decorate(book)
	return book, nil
}

// BookDetail is the full book page: the book with its tags, its comments,
// the active loan if any, and whether the viewer has favorited it.
type BookDetail struct {
	*models.Book
	Comments   []*models.Comment `json:"comments"`
	ActiveLoan *models.Loan      `json:"active_loan"`
	Favorited  bool              `json:"favorited"`
}

// RetrieveBookDetail assembles the detail view. viewerID is nil for
// anonymous visitors, who simply get favorited=false.
func (svc *Service) RetrieveBookDetail(ctx context.Context, id int, viewerID *int) (*BookDetail, error) {
	book, err := svc.RetrieveBook(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &BookDetail{Book: book, Comments: []*models.Comment{}}

	err = svc.db.NewSelect().
		Model(&detail.Comments).
		Relation("User").
		Where("c.book_id = ?", id).
		Order("c.created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	loan := &models.Loan{}
	err = svc.db.NewSelect().
		Model(loan).
		Relation("User").
		Where("l.book_id = ?", id).
		Where("l.returned_at IS NULL").
		Scan(ctx)
	if err == nil {
		detail.ActiveLoan = loan
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, errors.WithStack(err)
	}

	if viewerID != nil {
		favorited, err := svc.db.NewSelect().
			Model((*models.Favorite)(nil)).
			Where("user_id = ?", *viewerID).
			Where("book_id = ?", id).
			Exists(ctx)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		detail.Favorited = favorited
	}

	return detail, nil
}

// RetrieveBookByISBN finds a book by ISBN, trying progressively looser
// matches: the normalized form first, then the raw input verbatim, then a
// substring match. The chain exists because scanners hand us hyphenated
// codes while old catalog rows were typed in by hand.
func (svc *Service) RetrieveBookByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	normalized := models.NormalizeISBN(isbn)

	attempts := []func(q *bun.SelectQuery) *bun.SelectQuery{
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("b.isbn = ?", normalized)
		},
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("b.isbn = ?", strings.TrimSpace(isbn))
		},
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("b.isbn LIKE ?", "%"+normalized+"%")
		},
	}

	for _, apply := range attempts {
		book := &models.Book{}
		q := svc.db.NewSelect().
			Model(book).
			Relation("Tags.Tag").
			Order("b.id ASC").
			Limit(1)
		err := apply(q).Scan(ctx)
		if err == nil {
			svc.decorate(book)
			return book, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, errors.WithStack(err)
		}
	}

	return nil, errcodes.NotFound("Book")
}

// SearchBooks lists books matching the keyword and tag filter. Tags are an
// AND filter: every named tag must be on the book.
func (svc *Service) SearchBooks(ctx context.Context, opts SearchBooksOptions) ([]*models.Book, int, error) {
	books := []*models.Book{}

	q := svc.db.NewSelect().
		Model(&books).
		Relation("Tags.Tag").
		Order("b.title ASC").
		Limit(opts.Page.Limit()).
		Offset(opts.Page.Offset())

	if keyword := strings.TrimSpace(opts.Keyword); keyword != "" {
		pattern := "%" + keyword + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				WhereOr("b.title LIKE ?", pattern).
				WhereOr("b.author LIKE ?", pattern).
				WhereOr("b.publisher LIKE ?", pattern).
				WhereOr("b.isbn LIKE ?", "%"+models.NormalizeISBN(keyword)+"%")
		})
	}

	for _, name := range opts.TagNames {
		name := strings.TrimSpace(name)
		if name == "" {
			continue
		}
		q = q.Where(
			"EXISTS (SELECT 1 FROM book_tags bt JOIN tags t ON t.id = bt.tag_id WHERE bt.book_id = b.id AND LOWER(t.name) = LOWER(?))",
			name,
		)
	}

	total, err := q.ScanAndCount(ctx)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	svc.decorate(books...)
	return books, total, nil
}

// UpdateBook updates the given columns, and optionally replaces the tag set.
func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	if len(opts.Columns) == 0 && opts.TagNames == nil {
		return nil
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, col := range opts.Columns {
			if col == "isbn" {
				book.ISBN = models.NormalizeISBN(book.ISBN)
				exists, err := tx.NewSelect().
					Model((*models.Book)(nil)).
					Where("isbn = ?", book.ISBN).
					Where("id != ?", book.ID).
					Exists(ctx)
				if err != nil {
					return errors.WithStack(err)
				}
				if exists {
					return errcodes.Conflict("A book with this ISBN already exists")
				}
			}
		}

		if opts.TagNames != nil {
			if err := svc.replaceTags(ctx, tx, book, *opts.TagNames); err != nil {
				return err
			}
		}

		if len(opts.Columns) > 0 {
			book.UpdatedAt = time.Now()
			columns := append(opts.Columns, "updated_at")

			_, err := tx.NewUpdate().
				Model(book).
				Column(columns...).
				WherePK().
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	return svc.reloadTags(ctx, book)
}

// DeleteBook removes a book and its dependent rows. A book with an active
// loan can't be deleted; return it first.
func (svc *Service) DeleteBook(ctx context.Context, id int) error {
	book, err := svc.RetrieveBook(ctx, id)
	if err != nil {
		return err
	}

	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		active, err := tx.NewSelect().
			Model((*models.Loan)(nil)).
			Where("book_id = ?", id).
			Where("returned_at IS NULL").
			Exists(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if active {
			return errcodes.Conflict("This book is currently on loan")
		}

		for _, model := range []interface{}{
			(*models.BookTag)(nil),
			(*models.Comment)(nil),
			(*models.Favorite)(nil),
			(*models.InventoryCheck)(nil),
			(*models.Loan)(nil),
		} {
			_, err := tx.NewDelete().
				Model(model).
				Where("book_id = ?", id).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		_, err = tx.NewDelete().
			Model((*models.Book)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return err
	}

	if book.CoverImagePath != nil {
		// Best effort. An orphaned cover object is harmless.
		_ = svc.store.Delete(*book.CoverImagePath)
	}

	return nil
}

// SetCover stores a new cover object and points the book at it, removing the
// previous object afterwards.
func (svc *Service) SetCover(ctx context.Context, book *models.Book, objectName string) error {
	previous := book.CoverImagePath

	book.CoverImagePath = &objectName
	book.UpdatedAt = time.Now()
	_, err := svc.db.NewUpdate().
		Model(book).
		Column("cover_image_path", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	if previous != nil && *previous != objectName {
		_ = svc.store.Delete(*previous)
	}

	svc.decorate(book)
	return nil
}

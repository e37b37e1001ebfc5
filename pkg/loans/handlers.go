package loans

import (
	"net/http"
	"strconv"

	"github.com/chiyopla/bookspace/pkg/auth"
	"github.com/chiyopla/bookspace/pkg/errcodes"
	"github.com/chiyopla/bookspace/pkg/models"
	"github.com/chiyopla/bookspace/pkg/pagination"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	loanService *Service
	pageSize    int
}

// create registers a loan. Regular users can only borrow for themselves;
// staff can pass user_id to check a book out to someone at the front desk.
func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateLoanPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user := auth.UserFromContext(c)
	if user == nil {
		return errcodes.Unauthorized("Authentication required")
	}

	userID := user.ID
	if params.UserID != nil && *params.UserID != user.ID {
		if !user.IsStaff() {
			return errcodes.Forbidden("You can only register loans for yourself")
		}
		userID = *params.UserID
	}

	loan, err := h.loanService.RegisterLoan(ctx, userID, params.BookID)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusCreated, loan))
}

// returnLoan records the return of a book.
func (h *handler) returnLoan(c echo.Context) error {
	ctx := c.Request().Context()

	params := ReturnLoanPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user := auth.UserFromContext(c)
	if user == nil {
		return errcodes.Unauthorized("Authentication required")
	}

	// Staff can return any loan; users only their own.
	var userID *int
	if !user.IsStaff() {
		userID = &user.ID
	}

	loan, err := h.loanService.RegisterReturn(ctx, params.BookID, userID)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, loan))
}

// requestReturn emails the current borrower asking for the book back.
func (h *handler) requestReturn(c echo.Context) error {
	ctx := c.Request().Context()
	bookID, err := strconv.Atoi(c.Param("bookId"))
	if err != nil {
		return errcodes.NotFound("Book")
	}

	loan, err := h.loanService.RequestReturn(ctx, bookID)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, loan))
}

type receptionHandler struct {
	reception *Reception
}

// receptionLoan checks out a scanned book to a scanned member card.
func (h *receptionHandler) receptionLoan(c echo.Context) error {
	ctx := c.Request().Context()

	params := ReceptionPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	loan, err := h.reception.RegisterLoanByScan(ctx, params.ISBN, params.QRData)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusCreated, loan))
}

// receptionReturn records a scanned return.
func (h *receptionHandler) receptionReturn(c echo.Context) error {
	ctx := c.Request().Context()

	params := ReceptionPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	loan, err := h.reception.RegisterReturnByScan(ctx, params.ISBN, params.QRData)
	if err != nil {
		return err
	}

	return errors.WithStack(c.JSON(http.StatusOK, loan))
}

// list shows loans. Users see their own history; staff see everyone's and
// can filter by keyword.
func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListLoansQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user := auth.UserFromContext(c)
	if user == nil {
		return errcodes.Unauthorized("Authentication required")
	}

	page := pagination.New(params.Page, h.pageSize)
	opts := ListLoansOptions{
		Status:  params.Status,
		Keyword: params.Keyword,
		Page:    page,
	}

	if user.IsStaff() {
		opts.UserID = params.UserID
	} else {
		opts.UserID = &user.ID
	}

	loans, total, err := h.loanService.ListLoans(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Loans []*models.Loan  `json:"loans"`
		Meta  pagination.Meta `json:"meta"`
	}{loans, pagination.NewMeta(page, total)}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

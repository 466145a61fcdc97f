package docgen

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/traindesk/traindesk/internal/db"
	"github.com/traindesk/traindesk/internal/models"
	"github.com/traindesk/traindesk/internal/services"
)

// ErrFormNotSigned is returned when a document is requested before the
// booking form was signed; the assignment is only frozen after signing.
var ErrFormNotSigned = errors.New("booking form not signed yet")

var londonLoc = func() *time.Location {
	loc, err := time.LoadLocation("Europe/London")
	if err != nil {
		return time.UTC
	}
	return loc
}()

const sheetName = "Booking Form"

// BookingFormWorkbook renders the frozen booking form of a deal as an
// xlsx workbook: deal header, course roster, per-delegate assignments and
// the signature block.
func BookingFormWorkbook(dealID uint) (*excelize.File, error) {
	var deal models.Deal
	if err := db.Conn().First(&deal, dealID).Error; err != nil {
		return nil, err
	}

	var form models.BookingForm
	err := db.Conn().
		Where("deal_id = ? AND status = ?", dealID, models.FormStatusSigned).
		Order("id desc").First(&form).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFormNotSigned
	}
	if err != nil {
		return nil, err
	}

	courses, err := services.DealCourses(dealID)
	if err != nil {
		return nil, err
	}
	delegates, err := services.DealDelegates(dealID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), sheetName)

	setCell(f, "A1", "Course Booking Form")
	setCell(f, "A3", "Company")
	setCell(f, "B3", deal.Company)
	setCell(f, "A4", "Contact")
	setCell(f, "B4", deal.ContactName)
	setCell(f, "A5", "Email")
	setCell(f, "B5", deal.ContactEmail)

	// Course roster.
	row := 7
	setCell(f, cell("A", row), "Course")
	setCell(f, cell("B", row), "Dates")
	setCell(f, cell("C", row), "Venue")
	setCell(f, cell("D", row), "Seats")
	setCell(f, cell("E", row), "Price")
	var totalPence int64
	for _, c := range courses {
		row++
		setCell(f, cell("A", row), c.Name)
		setCell(f, cell("B", row), c.Dates)
		setCell(f, cell("C", row), c.Venue)
		setCell(f, cell("D", row), fmt.Sprintf("%d", c.RequiredDelegates))
		setCell(f, cell("E", row), money(c.PricePence, c.Currency))
		totalPence += c.PricePence * int64(c.RequiredDelegates)
	}
	row++
	setCell(f, cell("D", row), "Total")
	setCell(f, cell("E", row), money(totalPence, currencyOf(courses)))

	// Delegates with their frozen course assignments.
	row += 2
	setCell(f, cell("A", row), "Delegate")
	setCell(f, cell("B", row), "NI Number")
	setCell(f, cell("C", row), "Date of Birth")
	setCell(f, cell("D", row), "Postcode")
	setCell(f, cell("E", row), "Attending")
	for _, d := range delegates {
		attending, err := services.DelegateCourses(d.ID)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(attending))
		for i, c := range attending {
			names[i] = c.Name
		}
		row++
		setCell(f, cell("A", row), d.Name)
		setCell(f, cell("B", row), d.NINumber)
		setCell(f, cell("C", row), d.BirthDate.Format("02/01/2006"))
		setCell(f, cell("D", row), d.Postcode)
		setCell(f, cell("E", row), strings.Join(names, ", "))
	}

	row += 2
	setCell(f, cell("A", row), "Signed by")
	setCell(f, cell("B", row), form.SignedBy)
	if form.SignedAt != nil {
		row++
		setCell(f, cell("A", row), "Signed at")
		setCell(f, cell("B", row), form.SignedAt.In(londonLoc).Format("Mon, 02 Jan 2006 15:04"))
	}

	return f, nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func setCell(f *excelize.File, ref, value string) {
	_ = f.SetCellValue(sheetName, ref, value)
}

func money(pence int64, currency string) string {
	symbol := currency + " "
	if currency == "GBP" || currency == "" {
		symbol = "£"
	}
	return fmt.Sprintf("%s%.2f", symbol, float64(pence)/100)
}

func currencyOf(courses []models.Course) string {
	if len(courses) > 0 {
		return courses[0].Currency
	}
	return "GBP"
}

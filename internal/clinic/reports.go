package clinic

import (
	"context"

	"github.com/meditrack/clinic/internal/platform/reporting"
)

// Reports lists the spreadsheet exports served under /reports.
func (c *Clinic) Reports() []reporting.Report {
	return []reporting.Report{
		{
			ID:          "bills",
			Name:        "Bills",
			Description: "Every bill with its charges, plus revenue totals",
			Build:       c.billSheets,
		},
		{
			ID:          "appointments",
			Name:        "Appointments",
			Description: "Every appointment with patient and doctor names",
			Build:       c.appointmentSheets,
		},
	}
}

func (c *Clinic) billSheets(ctx context.Context) []reporting.Sheet {
	bills := c.Billing.List(ctx)
	rows := make([][]any, 0, len(bills))
	for _, b := range bills {
		rows = append(rows, []any{
			b.ID,
			b.AppointmentID,
			c.Patients.NameOf(ctx, b.PatientID),
			c.Doctors.NameOf(ctx, b.DoctorID),
			b.ConsultationFee(),
			b.Medicines(),
			b.Tests(),
			b.Other(),
			b.Subtotal(),
			b.Tax(),
			b.Total(),
			b.Paid,
			b.CreatedAt,
		})
	}

	return []reporting.Sheet{
		{
			Name: "Bills",
			Header: []string{
				"Bill", "Appointment", "Patient", "Doctor", "Consultation Fee",
				"Medicines", "Tests", "Other", "Subtotal", "Tax", "Total", "Paid", "Created At",
			},
			Rows: rows,
		},
		{
			Name:   "Summary",
			Header: []string{"Bills", "Paid", "Pending", "Total Revenue", "Outstanding", "Average Bill"},
			Rows: [][]any{{
				len(bills),
				len(c.Billing.ListPaid(ctx)),
				len(c.Billing.ListPending(ctx)),
				c.Billing.TotalRevenue(ctx),
				c.Billing.OutstandingAmount(ctx),
				c.Billing.AverageBill(ctx),
			}},
		},
	}
}

func (c *Clinic) appointmentSheets(ctx context.Context) []reporting.Sheet {
	appts := c.Appointments.List(ctx)
	rows := make([][]any, 0, len(appts))
	for _, a := range appts {
		rows = append(rows, []any{
			a.ID,
			c.Patients.NameOf(ctx, a.PatientID),
			c.Doctors.NameOf(ctx, a.DoctorID),
			a.DateTime,
			a.Reason,
			a.Status.Label(),
			a.ConsultationFee,
			a.Notes,
		})
	}
	return []reporting.Sheet{{
		Name:   "Appointments",
		Header: []string{"Appointment", "Patient", "Doctor", "Date Time", "Reason", "Status", "Fee", "Notes"},
		Rows:   rows,
	}}
}

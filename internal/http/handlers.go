package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ecowatch/emission-monitor/internal/domain"
	"github.com/ecowatch/emission-monitor/internal/repository"
	"github.com/ecowatch/emission-monitor/internal/service"
)

func Register(app *fiber.App, svcs *service.Services) {
	api := app.Group("/api/v1")

	registerCompanies(api, svcs)
	registerPenalties(api, svcs)
	registerStats(api, svcs)
	registerReports(api, svcs)
}

func registerCompanies(api fiber.Router, svcs *service.Services) {
	api.Get("/companies", func(c *fiber.Ctx) error {
		f := repository.CompanyFilters{
			Search: c.Query("search"),
			Status: domain.Status(c.Query("status")),
		}
		items, total, err := svcs.Companies.List(c.Context(), f, c.QueryInt("page", 1), c.QueryInt("size", 20))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"companies": items, "total": total})
	})

	api.Post("/companies", func(c *fiber.Ctx) error {
		var in service.CompanyInput
		if err := c.BodyParser(&in); err != nil {
			return fail(c, &service.ValidationError{Msg: "invalid company payload"})
		}
		company, err := svcs.Companies.Create(c.Context(), in)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, company)
	})

	api.Get("/companies/:id", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fail(c, repository.ErrNotFound)
		}
		detail, err := svcs.Companies.Detail(c.Context(), int64(id))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, detail)
	})

	api.Put("/companies/:id", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fail(c, repository.ErrNotFound)
		}
		var in service.CompanyInput
		if err := c.BodyParser(&in); err != nil {
			return fail(c, &service.ValidationError{Msg: "invalid company payload"})
		}
		company, err := svcs.Companies.Update(c.Context(), int64(id), in)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, company)
	})

	api.Post("/companies/:id/reading", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fail(c, repository.ErrNotFound)
		}
		var in struct {
			GasAmount float64 `json:"gas_amount"`
		}
		if err := c.BodyParser(&in); err != nil {
			return fail(c, &service.ValidationError{Msg: "invalid reading payload"})
		}
		company, err := svcs.Companies.UpdateReading(c.Context(), int64(id), in.GasAmount)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, company)
	})

	api.Get("/companies/:id/sensor-data", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fail(c, repository.ErrNotFound)
		}
		items, err := svcs.Companies.SensorHistory(c.Context(), int64(id), c.QueryInt("limit", 50))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, items)
	})

	api.Get("/companies/:id/penalties", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fail(c, repository.ErrNotFound)
		}
		if _, err := svcs.Companies.Get(c.Context(), int64(id)); err != nil {
			return fail(c, err)
		}
		items, err := svcs.Penalties.List(c.Context(),
			repository.PenaltyFilters{CompanyID: int64(id)}, c.QueryInt("limit", 50))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, items)
	})

	api.Get("/companies/:id/notifications", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fail(c, repository.ErrNotFound)
		}
		items, err := svcs.Companies.Notifications(c.Context(), int64(id), c.QueryInt("limit", 10))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, items)
	})

	api.Post("/notifications/:id/read", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fail(c, repository.ErrNotFound)
		}
		if err := svcs.Companies.MarkNotificationRead(c.Context(), int64(id)); err != nil {
			return fail(c, err)
		}
		return ok(c, nil)
	})
}

func registerPenalties(api fiber.Router, svcs *service.Services) {
	api.Get("/penalties", func(c *fiber.Ctx) error {
		f := repository.PenaltyFilters{
			Status:    domain.PenaltyStatus(c.Query("status")),
			CompanyID: int64(c.QueryInt("company_id", 0)),
		}
		items, err := svcs.Penalties.List(c.Context(), f, c.QueryInt("limit", 50))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, items)
	})

	api.Post("/penalties", func(c *fiber.Ctx) error {
		var in struct {
			CompanyID int64  `json:"company_id"`
			Deadline  string `json:"deadline"` // YYYY-MM-DD
		}
		if err := c.BodyParser(&in); err != nil {
			return fail(c, &service.ValidationError{Msg: "invalid penalty payload"})
		}
		var deadline time.Time
		if in.Deadline != "" {
			var err error
			if deadline, err = time.Parse("2006-01-02", in.Deadline); err != nil {
				return fail(c, &service.ValidationError{Msg: "deadline must be YYYY-MM-DD"})
			}
		}
		p, err := svcs.Penalties.Create(c.Context(), in.CompanyID, deadline)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, p)
	})

	api.Get("/penalties/:id", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fail(c, repository.ErrNotFound)
		}
		p, err := svcs.Penalties.Get(c.Context(), int64(id))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, p)
	})

	api.Post("/penalties/:id/complete", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fail(c, repository.ErrNotFound)
		}
		p, err := svcs.Penalties.Complete(c.Context(), int64(id))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, p)
	})

	api.Post("/penalties/:id/cancel", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fail(c, repository.ErrNotFound)
		}
		p, err := svcs.Penalties.Cancel(c.Context(), int64(id))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, p)
	})

	api.Post("/penalties/:id/response", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fail(c, repository.ErrNotFound)
		}
		var in struct {
			CompanyID int64    `json:"company_id"`
			Comment   string   `json:"comment"`
			Files     []string `json:"files"`
		}
		if err := c.BodyParser(&in); err != nil {
			return fail(c, &service.ValidationError{Msg: "invalid response payload"})
		}
		p, err := svcs.Penalties.SubmitResponse(c.Context(), int64(id), in.CompanyID, in.Comment, in.Files)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, p)
	})

	api.Get("/penalties/:id/responses", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fail(c, repository.ErrNotFound)
		}
		items, err := svcs.Penalties.Responses(c.Context(), int64(id))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, items)
	})
}

func registerStats(api fiber.Router, svcs *service.Services) {
	api.Get("/dashboard/stats", func(c *fiber.Ctx) error {
		stats, err := svcs.Stats.Dashboard(c.Context())
		if err != nil {
			return fail(c, err)
		}
		return ok(c, stats)
	})

	api.Get("/reports/data", func(c *fiber.Ctx) error {
		data, err := svcs.Stats.Report(c.Context(), c.QueryInt("year", time.Now().Year()))
		if err != nil {
			return fail(c, err)
		}
		return ok(c, data)
	})
}

func registerReports(api fiber.Router, svcs *service.Services) {
	api.Get("/reports/download", func(c *fiber.Ctx) error {
		p := service.Period{
			Type:    c.Query("report_type", "monthly"),
			Year:    c.QueryInt("year", time.Now().Year()),
			Month:   time.Month(c.QueryInt("month", int(time.Now().Month()))),
			Quarter: c.QueryInt("quarter", 1),
		}
		name, data, err := svcs.Reports.Generate(c.Context(), p)
		if err != nil {
			return fail(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
		return c.Send(data)
	})

	api.Get("/reports/stored", func(c *fiber.Ctx) error {
		keys, err := svcs.Reports.Stored(c.Context())
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"reports": keys})
	})

	api.Get("/reports/stored/:name", func(c *fiber.Ctx) error {
		data, err := svcs.Reports.FetchStored(c.Context(), c.Params("name"))
		if err != nil {
			return fail(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+c.Params("name")+`"`)
		return c.Send(data)
	})

	api.Post("/reports/upload", func(c *fiber.Ctx) error {
		p := service.Period{
			Type:    c.Query("report_type", "monthly"),
			Year:    c.QueryInt("year", time.Now().Year()),
			Month:   time.Month(c.QueryInt("month", int(time.Now().Month()))),
			Quarter: c.QueryInt("quarter", 1),
		}
		url, err := svcs.Reports.GenerateAndUpload(c.Context(), p)
		if err != nil {
			return fail(c, err)
		}
		return ok(c, fiber.Map{"url": url})
	})
}

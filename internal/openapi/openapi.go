// Package openapi describes the dentist JSON API as an OpenAPI 3 document.
package openapi

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

const (
	Title   = "Dental Clinic - Open API Documentation"
	Version = "1.0"

	namePattern         = `^[a-zA-ZáéíóúÁÉÍÓÚñÑ\s]+$`
	registrationPattern = `^[a-zA-Z0-9]+$`
)

func ref(name string, s *openapi3.Schema) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, s)
}

func dentistInputSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema().WithMinLength(1).WithPattern(namePattern)).
		WithProperty("lastName", openapi3.NewStringSchema().WithMinLength(1).WithPattern(namePattern)).
		WithProperty("registrationNumber", openapi3.NewStringSchema().WithMinLength(1).WithPattern(registrationPattern)).
		WithProperty("specialty", openapi3.NewStringSchema().WithMinLength(1)).
		WithRequired([]string{"name", "lastName", "registrationNumber", "specialty"})
}

func dentistSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewInt64Schema()).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("lastName", openapi3.NewStringSchema()).
		WithProperty("registrationNumber", openapi3.NewStringSchema()).
		WithProperty("specialty", openapi3.NewStringSchema()).
		WithProperty("createdAt", openapi3.NewDateTimeSchema()).
		WithProperty("updatedAt", openapi3.NewDateTimeSchema()).
		WithRequired([]string{"id", "name", "lastName", "registrationNumber", "specialty"})
}

func errorSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().
		WithProperty("error", openapi3.NewStringSchema()).
		WithProperty("errors", openapi3.NewArraySchema().WithItems(openapi3.NewStringSchema())).
		WithRequired([]string{"error"})
}

func response(description string, schema *openapi3.SchemaRef) *openapi3.ResponseRef {
	r := openapi3.NewResponse().WithDescription(description)
	if schema != nil {
		r = r.WithJSONSchemaRef(schema)
	}
	return &openapi3.ResponseRef{Value: r}
}

// Document builds the API description served at /v3/api-docs.
func Document() *openapi3.T {
	dentist := ref("Dentist", dentistSchema())
	input := ref("DentistInput", dentistInputSchema())
	apiErr := ref("Error", errorSchema())
	list := &openapi3.SchemaRef{Value: openapi3.NewArraySchema().WithItems(dentistSchema())}

	idParam := &openapi3.ParameterRef{Value: openapi3.NewPathParameter("id").
		WithDescription("Dentist id").
		WithSchema(openapi3.NewInt64Schema())}
	searchParam := &openapi3.ParameterRef{Value: openapi3.NewQueryParameter("q").
		WithDescription("Case and accent insensitive search over name, registration number and specialty").
		WithSchema(openapi3.NewStringSchema())}
	body := &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(input)}

	collection := &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"dentists"},
			Summary:     "List dentists",
			OperationID: "listDentists",
			Parameters:  openapi3.Parameters{searchParam},
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(http.StatusOK, response("Dentists ordered by id", list)),
				openapi3.WithStatus(http.StatusInternalServerError, response("Storage failure", apiErr)),
			),
		},
		Post: &openapi3.Operation{
			Tags:        []string{"dentists"},
			Summary:     "Create a dentist",
			OperationID: "createDentist",
			RequestBody: body,
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(http.StatusCreated, response("Created dentist", dentist)),
				openapi3.WithStatus(http.StatusBadRequest, response("Invalid dentist data", apiErr)),
				openapi3.WithStatus(http.StatusConflict, response("Registration number already in use", apiErr)),
			),
		},
	}

	item := &openapi3.PathItem{
		Parameters: openapi3.Parameters{idParam},
		Get: &openapi3.Operation{
			Tags:        []string{"dentists"},
			Summary:     "Find a dentist by id",
			OperationID: "getDentist",
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(http.StatusOK, response("The dentist", dentist)),
				openapi3.WithStatus(http.StatusNotFound, response("No dentist with that id", apiErr)),
			),
		},
		Put: &openapi3.Operation{
			Tags:        []string{"dentists"},
			Summary:     "Update a dentist",
			OperationID: "updateDentist",
			RequestBody: body,
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(http.StatusOK, response("Updated dentist", dentist)),
				openapi3.WithStatus(http.StatusBadRequest, response("Invalid dentist data", apiErr)),
				openapi3.WithStatus(http.StatusNotFound, response("No dentist with that id", apiErr)),
				openapi3.WithStatus(http.StatusConflict, response("Registration number already in use", apiErr)),
			),
		},
		Delete: &openapi3.Operation{
			Tags:        []string{"dentists"},
			Summary:     "Delete a dentist",
			OperationID: "deleteDentist",
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(http.StatusNoContent, response("Deleted", nil)),
				openapi3.WithStatus(http.StatusNotFound, response("No dentist with that id", apiErr)),
			),
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{
		"Dentist":      &openapi3.SchemaRef{Value: dentistSchema()},
		"DentistInput": &openapi3.SchemaRef{Value: dentistInputSchema()},
		"Error":        &openapi3.SchemaRef{Value: errorSchema()},
	}
	components.SecuritySchemes = openapi3.SecuritySchemes{
		"bearerAuth": &openapi3.SecuritySchemeRef{Value: openapi3.NewJWTSecurityScheme()},
	}

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   Title,
			Version: Version,
		},
		Components: &components,
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/api/dentists", collection),
			openapi3.WithPath("/api/dentists/{id}", item),
		),
	}
}

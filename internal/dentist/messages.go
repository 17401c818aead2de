package dentist

// User-facing texts. The clinic UI is in Spanish.
const (
	MsgNameRequired         = "El nombre es requerido"
	MsgLastNameRequired     = "El apellido es requerido"
	MsgRegistrationRequired = "La matrícula es requerida"
	MsgSpecialtyRequired    = "La especialidad es requerida"

	MsgNameLetters       = "El nombre solo puede contener letras"
	MsgLastNameLetters   = "El apellido solo puede contener letras"
	MsgRegistrationAlnum = "La matrícula solo puede contener letras y números"
	MsgSpecialtyMarkup   = "La especialidad no puede contener etiquetas HTML"
	MsgInvalidData       = "Los datos del dentista no son válidos"
	MsgMissingID         = "Error: ID del dentista es requerido para actualización"
	MsgBusy              = "Ya hay una operación en curso para este dentista"
	MsgEditCancelled     = "Edición cancelada"
	MsgSearchFailed      = "Error al realizar la búsqueda"
	msgCreated           = "Dr. %s agregado exitosamente"
	msgUpdated           = "Dr. %s actualizado exitosamente"
	msgDeleted           = "Dr. %s eliminado exitosamente"
	msgCreateFailed      = "Error al agregar dentista: %v"
	msgUpdateFailed      = "Error al actualizar dentista: %v"
	msgDeleteFailed      = "Error al eliminar dentista: %v"
	msgLoadFailed        = "Error al cargar datos del dentista: %v"
	labelAdding          = "Agregando..."
	labelAdd             = "Agregar Dentista"
	labelUpdating        = "Actualizando..."
	labelUpdate          = "Actualizar Dentista"
)

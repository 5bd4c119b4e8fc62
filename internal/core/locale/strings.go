package locale

// TextKey identifies a card string
type TextKey string

const (
	TextInvalidConfiguration TextKey = "common.invalid_configuration"
	TextDefaultNoEvent       TextKey = "common.default_no_event"
	TextMissingEntities      TextKey = "multiple_logbook_card.missing_entities"
	TextHistorySuffix        TextKey = "common.history"
	TextStale                TextKey = "common.stale"
	TextEntityUnavailable    TextKey = "common.entity_not_available"
	TextMoreItems            TextKey = "common.more_items"
	TextMissing              TextKey = "common.missing"
)

var texts = map[string]map[TextKey]string{
	"en": {
		TextInvalidConfiguration: "Invalid configuration",
		TextDefaultNoEvent:       "No event on the period",
		TextMissingEntities:      "Please define at least one entity",
		TextHistorySuffix:        "History",
		TextStale:                "showing last known timeline",
		TextEntityUnavailable:    "Entity not available",
		TextMoreItems:            "more",
		TextMissing:              "Not found",
	},
	"fr": {
		TextInvalidConfiguration: "Configuration invalide",
		TextDefaultNoEvent:       "Aucun événement sur la période",
		TextMissingEntities:      "Veuillez définir au moins une entité",
		TextHistorySuffix:        "Historique",
		TextStale:                "affichage de la dernière chronologie connue",
		TextEntityUnavailable:    "Entité non disponible",
		TextMoreItems:            "de plus",
		TextMissing:              "Introuvable",
	},
	"nb": {
		TextInvalidConfiguration: "Ugyldig konfigurasjon",
		TextDefaultNoEvent:       "Ingen hendelser i perioden",
		TextMissingEntities:      "Vennligst definer minst én entitet",
		TextHistorySuffix:        "Historikk",
		TextEntityUnavailable:    "Entiteten er ikke tilgjengelig",
		TextMoreItems:            "til",
		TextMissing:              "Ikke funnet",
	},
}

// Text returns the localized string, falling back to English and then to the key itself.
func (p *Provider) Text(key TextKey) string {
	if t, ok := texts[p.lang][key]; ok {
		return t
	}
	if t, ok := texts["en"][key]; ok {
		return t
	}
	return string(key)
}

var stateTexts = map[string]map[string]string{
	"en": {
		"on":          "On",
		"off":         "Off",
		"home":        "Home",
		"not_home":    "Away",
		"open":        "Open",
		"closed":      "Closed",
		"locked":      "Locked",
		"unlocked":    "Unlocked",
		"unavailable": "Unavailable",
		"unknown":     "Unknown",
	},
	"fr": {
		"on":          "Activé",
		"off":         "Désactivé",
		"home":        "Présent",
		"not_home":    "Absent",
		"open":        "Ouvert",
		"closed":      "Fermé",
		"locked":      "Verrouillé",
		"unlocked":    "Déverrouillé",
		"unavailable": "Indisponible",
		"unknown":     "Inconnu",
	},
	"nb": {
		"on":          "På",
		"off":         "Av",
		"home":        "Hjemme",
		"not_home":    "Borte",
		"open":        "Åpen",
		"closed":      "Lukket",
		"locked":      "Låst",
		"unlocked":    "Ulåst",
		"unavailable": "Utilgjengelig",
		"unknown":     "Ukjent",
	},
}

var attributeNames = map[string]map[string]string{
	"en": {
		"battery_level":       "Battery level",
		"friendly_name":       "Name",
		"unit_of_measurement": "Unit",
	},
	"fr": {
		"battery_level":       "Niveau de batterie",
		"friendly_name":       "Nom",
		"unit_of_measurement": "Unité",
	},
	"nb": {
		"battery_level":       "Batterinivå",
		"friendly_name":       "Navn",
		"unit_of_measurement": "Enhet",
	},
}

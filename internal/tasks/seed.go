package tasks

import "fmt"

// seedPayloads is the built-in content used to populate an empty store and
// served whenever the store is empty or cannot be reached.
var seedPayloads = map[string][]Payload{
	CategoryTaboo: {
		Taboo{Word: "supermercado", Forbidden: []string{"comprar", "comida", "tienda"}},
		Taboo{Word: "metro", Forbidden: []string{"tren", "transporte", "subterráneo"}},
		Taboo{Word: "apartamento", Forbidden: []string{"casa", "vivir", "piso"}},
		Taboo{Word: "paella", Forbidden: []string{"arroz", "España", "comida"}},
		Taboo{Word: "playa", Forbidden: []string{"mar", "arena", "nadar"}},
		Taboo{Word: "farmacia", Forbidden: []string{"medicina", "enfermo", "comprar"}},
		Taboo{Word: "biblioteca", Forbidden: []string{"libros", "leer", "estudiar"}},
		Taboo{Word: "gimnasio", Forbidden: []string{"ejercicio", "deporte", "músculos"}},
		Taboo{Word: "restaurante", Forbidden: []string{"comer", "comida", "camarero"}},
		Taboo{Word: "peluquería", Forbidden: []string{"pelo", "cortar", "tijeras"}},
		Taboo{Word: "aeropuerto", Forbidden: []string{"avión", "volar", "viajar"}},
		Taboo{Word: "hospital", Forbidden: []string{"médico", "enfermo", "enfermera"}},
		Taboo{Word: "panadería", Forbidden: []string{"pan", "comprar", "horno"}},
		Taboo{Word: "zapatería", Forbidden: []string{"zapatos", "comprar", "pies"}},
		Taboo{Word: "lavadora", Forbidden: []string{"ropa", "lavar", "agua"}},
		Taboo{Word: "nevera", Forbidden: []string{"frío", "comida", "cocina"}},
		Taboo{Word: "vecino", Forbidden: []string{"vivir", "cerca", "edificio"}},
		Taboo{Word: "tarjeta", Forbidden: []string{"pagar", "banco", "dinero"}},
		Taboo{Word: "cumpleaños", Forbidden: []string{"fiesta", "años", "regalo"}},
		Taboo{Word: "vacaciones", Forbidden: []string{"descansar", "viajar", "verano"}},
	},
	CategoryConjugation: {
		Conjugation{Verb: "tener", Question: "¿Cuántos años _____ (tú)?", Answer: "tienes"},
		Conjugation{Verb: "hacer", Question: "¿Qué _____ (tú) los fines de semana?", Answer: "haces"},
		Conjugation{Verb: "poner", Question: "¿Dónde _____ (tú) las llaves?", Answer: "pones"},
		Conjugation{Verb: "salir", Question: "¿A qué hora _____ (tú) de casa?", Answer: "sales"},
		Conjugation{Verb: "conocer", Question: "¿_____ (tú) Barcelona bien?", Answer: "Conoces"},
		Conjugation{Verb: "saber", Question: "¿_____ (tú) cocinar paella?", Answer: "Sabes"},
		Conjugation{Verb: "poder", Question: "¿_____ (tú) ayudarme?", Answer: "Puedes"},
		Conjugation{Verb: "querer", Question: "¿_____ (tú) ir al cine?", Answer: "Quieres"},
		Conjugation{Verb: "preferir", Question: "¿Qué _____ (tú), café o té?", Answer: "prefieres"},
		Conjugation{Verb: "levantarse", Question: "¿A qué hora _____ (tú)?", Answer: "te levantas"},
		Conjugation{Verb: "acostarse", Question: "¿A qué hora _____ (tú)?", Answer: "te acuestas"},
		Conjugation{Verb: "ducharse", Question: "¿Por la mañana o por la noche _____ (tú)?", Answer: "te duchas"},
		Conjugation{Verb: "vestirse", Question: "¿Cómo _____ (tú) para ir al trabajo?", Answer: "te vistes"},
		Conjugation{Verb: "ir", Question: "¿Cómo _____ (tú) al trabajo?", Answer: "vas"},
		Conjugation{Verb: "venir", Question: "¿De dónde _____ (tú)?", Answer: "vienes"},
		Conjugation{Verb: "traer", Question: "¿Qué _____ (tú) a la fiesta?", Answer: "traes"},
	},
	CategoryTopic: {
		Topic{Theme: "Comida española"},
		Topic{Theme: "Partes del cuerpo"},
		Topic{Theme: "Ropa de verano"},
		Topic{Theme: "Transporte en Barcelona"},
		Topic{Theme: "Muebles de casa"},
		Topic{Theme: "Profesiones"},
		Topic{Theme: "Animales"},
		Topic{Theme: "Frutas y verduras"},
		Topic{Theme: "Colores"},
		Topic{Theme: "Días y meses"},
		Topic{Theme: "Lugares de Barcelona"},
		Topic{Theme: "Bebidas"},
		Topic{Theme: "Deportes"},
		Topic{Theme: "Electrodomésticos"},
		Topic{Theme: "Tiempo atmosférico"},
	},
	CategoryDialogue: {
		Dialogue{Tense: "presente", Situation: "Estás en un café con tu amigo. Habla de tu rutina diaria."},
		Dialogue{Tense: "pasado", Situation: "Cuenta qué hiciste ayer después del trabajo."},
		Dialogue{Tense: "imperfecto", Situation: "Describe cómo era tu vida en tu país antes de venir a España."},
		Dialogue{Tense: "futuro", Situation: "Habla de tus planes para las próximas vacaciones."},
		Dialogue{Tense: "presente", Situation: "Describe tu barrio y qué hay cerca de tu casa."},
		Dialogue{Tense: "pasado", Situation: "Cuenta una experiencia divertida que tuviste en Barcelona."},
		Dialogue{Tense: "imperfecto", Situation: "Describe cómo eran tus veranos cuando eras niño/a."},
		Dialogue{Tense: "futuro", Situation: "Habla de lo que harás este fin de semana."},
		Dialogue{Tense: "presente", Situation: "Describe tu trabajo o estudios actuales."},
		Dialogue{Tense: "pasado", Situation: "Cuenta tu último viaje."},
		Dialogue{Tense: "subjuntivo", Situation: "Da consejos a un amigo que quiere aprender español."},
		Dialogue{Tense: "subjuntivo", Situation: "Expresa deseos para el año nuevo."},
		Dialogue{Tense: "presente", Situation: "Habla sobre tu comida favorita y cómo se prepara."},
		Dialogue{Tense: "pasado", Situation: "Cuenta cómo fue tu primera semana en Barcelona."},
		Dialogue{Tense: "futuro", Situation: "Describe cómo será tu vida dentro de 5 años."},
	},
	CategoryRoleplay: {
		Roleplay{Scene: "En el bar", FirstRole: "Cliente", SecondRole: "Camarero", Instructions: "Pide algo de beber y comer", Vocabulary: []string{"poner", "cuenta", "propina", "terraza"}},
		Roleplay{Scene: "En el supermercado", FirstRole: "Cliente", SecondRole: "Dependiente", Instructions: "Pregunta dónde están los productos", Vocabulary: []string{"pasillo", "oferta", "bolsa", "caja"}},
		Roleplay{Scene: "En el metro", FirstRole: "Turista", SecondRole: "Pasajero local", Instructions: "Pide indicaciones para llegar a Sagrada Familia", Vocabulary: []string{"línea", "transbordo", "parada", "billete"}},
		Roleplay{Scene: "En la farmacia", FirstRole: "Cliente", SecondRole: "Farmacéutico", Instructions: "Explica tus síntomas y pide medicina", Vocabulary: []string{"dolor", "receta", "pastillas", "jarabe"}},
		Roleplay{Scene: "En el médico", FirstRole: "Paciente", SecondRole: "Médico", Instructions: "Describe cómo te sientes", Vocabulary: []string{"fiebre", "dolor", "cita", "análisis"}},
		Roleplay{Scene: "En una tienda de ropa", FirstRole: "Cliente", SecondRole: "Dependiente", Instructions: "Busca una camiseta y pregunta por tallas", Vocabulary: []string{"probador", "talla", "rebaja", "quedar"}},
		Roleplay{Scene: "En un restaurante", FirstRole: "Cliente", SecondRole: "Camarero", Instructions: "Pide el menú del día y pregunta por alergias", Vocabulary: []string{"carta", "primer plato", "postre", "cuenta"}},
		Roleplay{Scene: "Alquilando un piso", FirstRole: "Inquilino", SecondRole: "Propietario", Instructions: "Pregunta sobre el piso y las condiciones", Vocabulary: []string{"fianza", "gastos", "amueblado", "contrato"}},
		Roleplay{Scene: "En la playa", FirstRole: "Turista", SecondRole: "Socorrista", Instructions: "Pregunta sobre las normas de la playa", Vocabulary: []string{"bandera", "sombrilla", "chiringuito", "olas"}},
		Roleplay{Scene: "En el banco", FirstRole: "Cliente", SecondRole: "Empleado", Instructions: "Quieres abrir una cuenta", Vocabulary: []string{"cuenta", "tarjeta", "transferencia", "cajero"}},
		Roleplay{Scene: "En la peluquería", FirstRole: "Cliente", SecondRole: "Peluquero", Instructions: "Explica cómo quieres el corte de pelo", Vocabulary: []string{"cortar", "flequillo", "teñir", "lavar"}},
		Roleplay{Scene: "Llamada telefónica", FirstRole: "Llamador", SecondRole: "Receptor", Instructions: "Llama para hacer una reserva en un restaurante", Vocabulary: []string{"reservar", "mesa", "persona", "hora"}},
		Roleplay{Scene: "En el gimnasio", FirstRole: "Nuevo cliente", SecondRole: "Recepcionista", Instructions: "Pregunta por las tarifas y horarios", Vocabulary: []string{"abono", "clase", "vestuario", "entrenador"}},
		Roleplay{Scene: "En el aeropuerto", FirstRole: "Pasajero", SecondRole: "Personal de facturación", Instructions: "Factura tu maleta y pregunta por la puerta", Vocabulary: []string{"equipaje", "embarque", "puerta", "asiento"}},
		Roleplay{Scene: "En una fiesta", FirstRole: "Invitado nuevo", SecondRole: "Anfitrión", Instructions: "Preséntate y conoce a la gente", Vocabulary: []string{"presentar", "conocer", "encantado", "copa"}},
	},
	CategoryQuestion: {
		Question{Question: "¿Por qué decidiste venir a Barcelona?", Hint: "Trabajo, estudios, familia, clima, cultura..."},
		Question{Question: "¿Qué es lo que más te gusta de vivir en España?", Hint: "Comida, gente, clima, cultura, idioma..."},
		Question{Question: "¿Qué echas de menos de tu país?", Hint: "Familia, amigos, comida, costumbres..."},
		Question{Question: "¿Cuál fue tu momento más difícil al llegar a España?", Hint: "Idioma, burocracia, cultura, soledad..."},
		Question{Question: "¿Qué haces en tu tiempo libre en Barcelona?", Hint: "Deportes, paseos, amigos, cultura..."},
		Question{Question: "¿Has visitado otras ciudades de España? ¿Cuáles?", Hint: "Madrid, Valencia, Sevilla, Granada..."},
		Question{Question: "¿Cómo es tu rutina diaria?", Hint: "Mañana, tarde, noche, trabajo, estudio..."},
		Question{Question: "¿Qué comida española te gusta más? ¿Y menos?", Hint: "Paella, tortilla, jamón, gazpacho..."},
		Question{Question: "¿Celebras las fiestas españolas? ¿Cuáles?", Hint: "Sant Jordi, La Mercè, Navidad, Reyes..."},
		Question{Question: "¿Cómo es tu barrio? ¿Te gusta vivir allí?", Hint: "Tranquilo, ruidoso, céntrico, servicios..."},
		Question{Question: "¿Qué planes tienes para el futuro en España?", Hint: "Trabajo, estudios, familia, viajes..."},
		Question{Question: "¿Qué diferencias culturales has notado entre tu país y España?", Hint: "Horarios, comida, relaciones, trabajo..."},
		Question{Question: "¿Cómo conociste a tus amigos en Barcelona?", Hint: "Trabajo, estudios, vecinos, actividades..."},
		Question{Question: "¿Qué consejos darías a alguien que viene a vivir a Barcelona?", Hint: "Idioma, papeles, vivienda, trabajo..."},
		Question{Question: "¿Cuál es tu lugar favorito de Barcelona?", Hint: "Parque, playa, barrio, edificio..."},
	},
	CategoryRiddle: {
		Riddle{Answer: "playa", Clues: []string{"arena", "mar", "sol", "verano", "Barceloneta"}},
		Riddle{Answer: "metro", Clues: []string{"transporte", "bajo tierra", "rápido", "L1 L2 L3"}},
		Riddle{Answer: "paella", Clues: []string{"arroz", "Valencia", "sartén grande", "marisco"}},
		Riddle{Answer: "Sagrada Familia", Clues: []string{"Gaudí", "iglesia", "turistas", "famosa"}},
		Riddle{Answer: "sangría", Clues: []string{"bebida", "fruta", "vino", "verano"}},
		Riddle{Answer: "siesta", Clues: []string{"dormir", "tarde", "descanso", "español"}},
		Riddle{Answer: "tapas", Clues: []string{"pequeño", "bar", "compartir", "comida"}},
		Riddle{Answer: "flamenco", Clues: []string{"baile", "España", "guitarra", "vestido"}},
		Riddle{Answer: "tortilla", Clues: []string{"huevo", "patata", "redonda", "española"}},
		Riddle{Answer: "Ramblas", Clues: []string{"calle", "Barcelona", "centro", "turistas"}},
		Riddle{Answer: "jamón", Clues: []string{"cerdo", "caro", "ibérico", "delicioso"}},
		Riddle{Answer: "bicing", Clues: []string{"bicicleta", "Barcelona", "alquiler", "rojo"}},
		Riddle{Answer: "mercado", Clues: []string{"comida", "fresco", "Boquería", "comprar"}},
		Riddle{Answer: "churros", Clues: []string{"frito", "dulce", "desayuno", "chocolate"}},
		Riddle{Answer: "Park Güell", Clues: []string{"Gaudí", "colores", "dragón", "vistas"}},
	},
	CategoryCharade: {
		Charade{Word: "dormir"},
		Charade{Word: "comer"},
		Charade{Word: "bailar"},
		Charade{Word: "conducir"},
		Charade{Word: "nadar"},
		Charade{Word: "cocinar"},
		Charade{Word: "leer"},
		Charade{Word: "cantar"},
		Charade{Word: "llorar"},
		Charade{Word: "pintar"},
		Charade{Word: "esquiar"},
		Charade{Word: "escribir"},
	},
}

// SeedSet returns the built-in records keyed by category. Seed records carry
// stable IDs of the form "seed-<category>-NN".
func SeedSet() map[string][]Record {
	out := make(map[string][]Record, len(seedPayloads))
	for category, payloads := range seedPayloads {
		records := make([]Record, 0, len(payloads))
		for i, p := range payloads {
			rec := FromPayload(p)
			rec.ID = fmt.Sprintf("seed-%s-%02d", category, i+1)
			records = append(records, rec)
		}
		out[category] = records
	}
	return out
}

package affidavit

const adultsText = `DECLARACIÓN JURADA PARA INSCRIPCIÓN DE MAYORES DE EDAD

1. DECLARACIONES INICIALES
El participante (en adelante, "El Atleta") declara bajo juramento:

Que es mayor de 18 años y goza de plena capacidad jurídica conforme al Código Civil y Comercial de la Nación (art. 22 y ss.).

Que la información proporcionada es veraz, actualizada y responde a una situación real. Reconoce que la falsedad de datos acarrea responsabilidades civiles y penales (arts. 275 y ss. Cód Penal Argentino).

2. ACEPTACIÓN DE TÉRMINOS
El Atleta acepta someterse al reglamento del torneo, horarios, directivas organizativas y tasa de inscripción.

La acción de "Registrarse" (click o firma digital) constituye consentimiento expreso e inequívoco de estos términos.

3. RESPONSABILIDADES DEL ATLETA
Uso adecuado del sistema: Se compromete a no utilizar el sitio web o servicios asociados para fines ilegales, contrarios a la moral o buenas costumbres.

Exclusión de responsabilidad organizativa:

Lesiones o daños: Releva a la Organización, árbitros, voluntarios y sponsors de toda responsabilidad por lesiones, gastos médicos, hospitalarios o pérdidas materiales derivadas de su participación.

Fuerza mayor: Exime a la Organización de fallas en servicios por casos fortuitos (ej.: cortes de internet, desastres naturales).

4. TRATAMIENTO DE DATOS (Ley 25.326 de Protección de Datos Personales)
Autoriza el tratamiento de sus datos personales para:

Gestión administrativa del evento.

Comunicaciones oficiales (vía email o publicaciones en el sitio web).

Promoción del deporte (incluye uso de nombre, imágenes y videos sin compensación económica).

5. AUTORIZACIÓN MÉDICA
En caso de emergencia, autoriza a la Organización a tomar decisiones médicas urgentes (incluyendo hospitalización), hasta que se contacte a un familiar o tutor.

Reconoce que los gastos médicos posteriores al evento son de su exclusiva responsabilidad.

6. DERECHOS DE IMAGEN
Cede a la Organización los derechos de uso de su imagen (fotos, videos, entrevistas) para fines promocionales del Brazilian Jiu Jitsu, en cualquier medio y sin límite temporal.

7. NOTIFICACIONES
Las notificaciones enviadas al correo electrónico registrado se considerarán válidas.

8. JURISDICCIÓN Y ACEPTACIÓN
Esta declaración se rige por las leyes de la República Argentina.

La participación en el torneo implica la aceptación íntegra de estos términos.
`

const minorsText = `DECLARACIÓN JURADA PARA INSCRIPCIÓN DE MENORES DE EDAD
TÉRMINOS, CONDICIONES Y RESPONSABILIDAD CIVIL DEL TUTOR/PADRE/RESPONSABLE

DEFINICIONES
"El Menor": Persona menor de 18 años cuya inscripción se realiza mediante el presente formulario.
"El Responsable": Padre, madre, tutor o guardador legal que suscribe esta declaración y asume la responsabilidad civil por el Menor.

DECLARACIÓN DE RESPONSABILIDAD
El Responsable declara bajo juramento que:
a) Es mayor de edad y ejerce la representación legal del Menor conforme a la ley argentina.
b) Acepta plena responsabilidad civil, penal y administrativa por los actos del Menor durante su participación en el evento.
c) Garantiza la veracidad de los datos proporcionados y se obliga a mantenerlos actualizados.

CONDICIONES DE PARTICIPACIÓN
El Responsable acepta que el Menor participará en el torneo bajo las reglas del Brazilian Jiu Jitsu y las disposiciones del organizador.
El Menor se abstendrá de conductas contrarias a la moral, buenas costumbres o normativa aplicable.

TRATAMIENTO DE DATOS
El Responsable autoriza el tratamiento automatizado de los datos del Menor para fines de gestión del evento, conforme a la Ley 25.326 de Protección de Datos Personales.

EXENCIÓN DE RESPONSABILIDAD
El Responsable exime expresamente a la Organización, árbitros, voluntarios y demás involucrados de:
a) Reclamos por lesiones, daños o gastos médicos derivados de la participación del Menor.
b) Responsabilidad por casos fortuitos, fuerza mayor o fallas técnicas del sistema de inscripción.

AUTORIZACIÓN MÉDICA Y EMERGENCIAS
El Responsable autoriza a la Organización a tomar decisiones médicas urgentes para el Menor (incluyendo hospitalización), comprometiéndose a cubrir los gastos derivados.
La Organización no será responsable por tratamientos médicos posteriores al evento.

DERECHOS DE IMAGEN
El Responsable autoriza el uso de imágenes, videos y nombre del Menor para promoción del deporte, sin compensación económica.

NOTIFICACIONES
Las notificaciones enviadas al correo electrónico del Responsable se considerarán válidas.

ACEPTACIÓN
Al marcar "Aceptar" el Responsable manifiesta su conformidad con todos los términos aquí expuestos, bajo apercibimiento de las acciones legales correspondientes por falsedad declarativa (arts. 275 y ss. del Código Penal Argentino).
`

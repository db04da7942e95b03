package sqlinline

const QGetUserAuth = `--sql e94d2b7f-60a3-4518-9cd7-f18e35b0a246
select id, email, role
from users
where id = $1::uuid;
`

// QPromoteUserRole is conditional on the current role so repeated bootstrap
// promotions converge without extra writes.
const QPromoteUserRole = `--sql 2a81f6c3-d45e-4097-bb12-9c30e58d7af1
update users
set role = $2::text, updated_at = now()
where id = $1::uuid and role = 'user';
`
